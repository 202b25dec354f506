package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// CachedCatalog 帶快取的目錄服務
// 包裝任一 Service，快取搜尋結果以減少對外部目錄的往返
type CachedCatalog struct {
	inner  Service
	config *config.CacheConfig
	mu     sync.RWMutex
	store  map[string]cacheEntry
	stats  cacheStats
	done   chan struct{}
}

// cacheEntry 快取條目
type cacheEntry struct {
	foods       []common.CatalogFood
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewCachedCatalog 包裝目錄服務加上查詢快取
// 快取停用時直接回傳原服務
func NewCachedCatalog(inner Service, cfg *config.CacheConfig) Service {
	if !cfg.Enabled {
		common.LogInfo("目錄快取已停用")
		return inner
	}

	c := &CachedCatalog{
		inner:  inner,
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期快取的協程
	go c.startCleanup()

	common.LogInfo("目錄快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return c
}

// Search 先查快取，未命中再查內層服務
// 內層服務出錯時不寫入快取，錯誤原樣回傳
func (c *CachedCatalog) Search(ctx context.Context, term string) ([]common.CatalogFood, error) {
	key := strings.ToLower(strings.TrimSpace(term))

	if foods, ok := c.get(key); ok {
		common.LogCacheHit("catalog", key)
		return foods, nil
	}
	common.LogCacheMiss("catalog", key)

	foods, err := c.inner.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	c.set(key, foods)
	return foods, nil
}

// get 讀取快取，同時更新訪問統計
func (c *CachedCatalog) get(key string) ([]common.CatalogFood, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		c.stats.misses++
		return nil, false
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		return nil, false
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++

	out := make([]common.CatalogFood, len(entry.foods))
	copy(out, entry.foods)
	return out, true
}

// set 寫入快取，容量滿時先清過期再做 LRU 淘汰
func (c *CachedCatalog) set(key string, foods []common.CatalogFood) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.config.MaxSize {
		evicted := c.cleanupLocked()
		if evicted > 0 {
			common.LogInfo("快取清理執行", zap.Int("清理數量", evicted))
		}
		if len(c.store) >= c.config.MaxSize {
			c.evictLRULocked()
		}
		if len(c.store) >= c.config.MaxSize {
			common.LogWarn("快取已滿", zap.Int("目前容量", len(c.store)))
			return
		}
	}

	stored := make([]common.CatalogFood, len(foods))
	copy(stored, foods)

	now := time.Now()
	c.store[key] = cacheEntry{
		foods:      stored,
		expiresAt:  now.Add(c.config.TTL),
		lastAccess: now,
	}
}

// startCleanup 啟動清理過期快取的協程
func (c *CachedCatalog) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.cleanupLocked()
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// cleanupLocked 清理過期的快取，呼叫端需持有鎖
func (c *CachedCatalog) cleanupLocked() int {
	now := time.Now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}
	return count
}

// evictLRULocked 淘汰最少使用的條目，呼叫端需持有鎖
func (c *CachedCatalog) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
		common.LogInfo("快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 取得快取統計信息
func (c *CachedCatalog) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.hits + c.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(c.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(c.store),
		"max_size":  c.config.MaxSize,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉快取
func (c *CachedCatalog) Close() error {
	close(c.done)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
	common.LogInfo("目錄快取已關閉",
		zap.Int64("命中次數", c.stats.hits),
		zap.Int64("未命中次數", c.stats.misses),
		zap.Int64("淘汰次數", c.stats.evictions),
	)
	return nil
}
