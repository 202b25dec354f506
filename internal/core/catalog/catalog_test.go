package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"
)

// countingCatalog 記錄查詢次數的目錄替身
type countingCatalog struct {
	inner Service
	calls int
}

func (c *countingCatalog) Search(ctx context.Context, term string) ([]common.CatalogFood, error) {
	c.calls++
	return c.inner.Search(ctx, term)
}

func TestMemorySearchCaseInsensitive(t *testing.T) {
	cat := NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Chicken Breast", Category: "meat"},
		{ID: "2", Name: "Bread", Brand: "Baker Co", Category: "bakery"},
	})

	foods, err := cat.Search(context.Background(), "BREAD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(foods) != 1 || foods[0].Name != "Bread" {
		t.Errorf("Search(BREAD) = %v, want [Bread]", foods)
	}

	// 品牌與分類也在搜尋範圍
	foods, _ = cat.Search(context.Background(), "baker")
	if len(foods) != 1 {
		t.Errorf("brand search returned %d foods, want 1", len(foods))
	}
	foods, _ = cat.Search(context.Background(), "meat")
	if len(foods) != 1 || foods[0].Name != "Chicken Breast" {
		t.Errorf("category search = %v, want [Chicken Breast]", foods)
	}
}

func TestMemorySearchEmptyTermReturnsAll(t *testing.T) {
	cat := NewSeedCatalog()

	foods, err := cat.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(foods) == 0 {
		t.Fatal("empty term should return the full catalog")
	}

	found := false
	for _, f := range foods {
		if strings.EqualFold(f.Name, "bread") {
			found = true
			if f.NutrientsPer100g.Calories != 265 {
				t.Errorf("bread calories = %f, want 265", f.NutrientsPer100g.Calories)
			}
		}
	}
	if !found {
		t.Error("seed catalog should contain Bread")
	}
}

func TestMemoryAddUserDefined(t *testing.T) {
	cat := NewMemoryCatalog(nil)
	cat.Add(common.CatalogFood{ID: "u1", Name: "Grandma's Pie", IsUserDefined: true})

	foods, _ := cat.Search(context.Background(), "pie")
	if len(foods) != 1 || !foods[0].IsUserDefined {
		t.Errorf("Search(pie) = %v, want the user-defined food", foods)
	}
}

func TestCachedCatalogHit(t *testing.T) {
	inner := &countingCatalog{inner: NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
	})}
	cached := NewCachedCatalog(inner, &config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 3; i++ {
		foods, err := cached.Search(context.Background(), "bread")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(foods) != 1 {
			t.Fatalf("Search returned %d foods, want 1", len(foods))
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner catalog called %d times, want 1 (cached)", inner.calls)
	}
}

func TestCachedCatalogExpiry(t *testing.T) {
	inner := &countingCatalog{inner: NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
	})}
	cached := NewCachedCatalog(inner, &config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             20 * time.Millisecond,
		CleanupInterval: time.Hour,
	})

	cached.Search(context.Background(), "bread")
	time.Sleep(40 * time.Millisecond)
	cached.Search(context.Background(), "bread")

	if inner.calls != 2 {
		t.Errorf("inner catalog called %d times, want 2 (expired entry refetched)", inner.calls)
	}
}

func TestCachedCatalogDisabledReturnsInner(t *testing.T) {
	inner := NewMemoryCatalog(nil)
	got := NewCachedCatalog(inner, &config.CacheConfig{Enabled: false})
	if got != Service(inner) {
		t.Error("disabled cache should return the inner service unchanged")
	}
}

func TestCachedCatalogDefensiveCopy(t *testing.T) {
	inner := NewMemoryCatalog([]common.CatalogFood{{ID: "1", Name: "Bread"}})
	cached := NewCachedCatalog(inner, &config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})

	first, _ := cached.Search(context.Background(), "bread")
	first[0].Name = "mutated"

	second, _ := cached.Search(context.Background(), "bread")
	if second[0].Name != "Bread" {
		t.Errorf("cached entry was mutated through a returned slice: %q", second[0].Name)
	}
}
