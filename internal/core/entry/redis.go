package entry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 記錄保留天數，超過後由 Redis 過期機制回收
const retentionDays = 90

// RedisStore Redis 飲食記錄儲存
// 每位使用者每天一個 list 鍵，記錄以 JSON 附加
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 創建 Redis 儲存並驗證連線
func NewRedisStore(cfg *config.EntryConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("飲食記錄儲存已初始化", zap.String("addr", cfg.RedisAddr))
	return &RedisStore{client: client}, nil
}

// Save 將記錄附加到當日的 list
func (s *RedisStore) Save(ctx context.Context, userID string, items []common.FoodItem) error {
	if len(items) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal food item: %w", err)
		}
		values = append(values, data)
	}

	key := s.key(userID, items[0].Timestamp)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, retentionDays*24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save food items: %w", err)
	}
	return nil
}

// ListByDate 讀取使用者某日的全部記錄，無記錄時回傳空切片
func (s *RedisStore) ListByDate(ctx context.Context, userID string, date time.Time) ([]common.FoodItem, error) {
	key := s.key(userID, date)

	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	items := make([]common.FoodItem, 0, len(raw))
	for _, data := range raw {
		var item common.FoodItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal food item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(userID string, date time.Time) string {
	return fmt.Sprintf("meal:entries:%s:%s", userID, dateKey(date))
}
