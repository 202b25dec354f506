package entry

import (
	"context"
	"sync"
	"time"

	"meal-parser/internal/pkg/common"
)

// MemoryStore 記憶體飲食記錄儲存
// 未設定 Redis 時的後備儲存，也作為測試替身；程序結束即清空
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]common.FoodItem // userID:date → 記錄
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]common.FoodItem)}
}

// Save 附加記錄到當日分桶
func (s *MemoryStore) Save(ctx context.Context, userID string, items []common.FoodItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(userID, items[0].Timestamp)
	s.items[key] = append(s.items[key], items...)
	return nil
}

// ListByDate 讀取使用者某日的全部記錄
func (s *MemoryStore) ListByDate(ctx context.Context, userID string, date time.Time) ([]common.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.items[s.key(userID, date)]
	out := make([]common.FoodItem, len(stored))
	copy(out, stored)
	return out, nil
}

// Close 清空儲存
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]common.FoodItem)
	return nil
}

func (s *MemoryStore) key(userID string, date time.Time) string {
	return userID + ":" + dateKey(date)
}
