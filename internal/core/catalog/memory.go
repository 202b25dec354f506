package catalog

import (
	"context"
	"strings"
	"sync"

	"meal-parser/internal/pkg/common"
)

// MemoryCatalog 記憶體目錄
// 未設定遠端目錄服務時的內建目錄，也作為測試替身
type MemoryCatalog struct {
	mu    sync.RWMutex
	foods []common.CatalogFood
}

// NewMemoryCatalog 創建記憶體目錄
func NewMemoryCatalog(foods []common.CatalogFood) *MemoryCatalog {
	return &MemoryCatalog{foods: foods}
}

// NewSeedCatalog 創建帶有內建常見食物的記憶體目錄
func NewSeedCatalog() *MemoryCatalog {
	return NewMemoryCatalog(seedFoods())
}

// Search 不分大小寫的子字串搜尋，空字串回傳完整目錄
func (c *MemoryCatalog) Search(ctx context.Context, term string) ([]common.CatalogFood, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if term == "" {
		out := make([]common.CatalogFood, len(c.foods))
		copy(out, c.foods)
		return out, nil
	}

	needle := strings.ToLower(term)
	var out []common.CatalogFood
	for _, f := range c.foods {
		if strings.Contains(strings.ToLower(f.Name), needle) ||
			strings.Contains(strings.ToLower(f.Brand), needle) ||
			strings.Contains(strings.ToLower(f.Category), needle) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Add 加入食物條目（使用者自訂食物）
func (c *MemoryCatalog) Add(food common.CatalogFood) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.foods = append(c.foods, food)
}

// seedFoods 內建常見食物，每 100g 參考營養值
func seedFoods() []common.CatalogFood {
	return []common.CatalogFood{
		{
			ID: "seed-bread", Name: "Bread", Category: "bakery",
			ServingSize: 25, ServingUnit: "slice", PreparationState: "baked",
			NutrientsPer100g: common.NutrientVector{
				Calories: 265, Protein: 9.0, Carbs: 49.0, Fat: 3.2,
				Fiber: 2.7, Sugar: 5.0, Sodium: 491,
			},
		},
		{
			ID: "seed-rice", Name: "White Rice", Category: "grains",
			ServingSize: 150, ServingUnit: "cup", PreparationState: "boiled",
			NutrientsPer100g: common.NutrientVector{
				Calories: 130, Protein: 2.7, Carbs: 28.0, Fat: 0.3,
				Fiber: 0.4, Sugar: 0.1, Sodium: 1,
			},
		},
		{
			ID: "seed-chicken-breast", Name: "Chicken Breast", Category: "meat",
			ServingSize: 100, ServingUnit: "serving", PreparationState: "raw",
			NutrientsPer100g: common.NutrientVector{
				Calories: 165, Protein: 31.0, Carbs: 0, Fat: 3.6,
				Sodium: 74,
			},
		},
		{
			ID: "seed-chicken-thigh", Name: "Chicken Thigh", Category: "meat",
			ServingSize: 100, ServingUnit: "serving", PreparationState: "raw",
			NutrientsPer100g: common.NutrientVector{
				Calories: 209, Protein: 26.0, Carbs: 0, Fat: 10.9,
				Sodium: 84,
			},
		},
		{
			ID: "seed-egg", Name: "Egg", Category: "dairy",
			ServingSize: 50, ServingUnit: "piece", PreparationState: "raw",
			NutrientsPer100g: common.NutrientVector{
				Calories: 143, Protein: 12.6, Carbs: 0.7, Fat: 9.5,
				Sodium: 142, VitaminA: 160,
			},
		},
		{
			ID: "seed-milk", Name: "Whole Milk", Category: "dairy",
			ServingSize: 240, ServingUnit: "cup", PreparationState: "fresh",
			NutrientsPer100g: common.NutrientVector{
				Calories: 61, Protein: 3.2, Carbs: 4.8, Fat: 3.3,
				Sugar: 5.1, Sodium: 43, Calcium: 113,
			},
		},
		{
			ID: "seed-coffee", Name: "Black Coffee", Category: "beverages",
			ServingSize: 240, ServingUnit: "cup", PreparationState: "fresh",
			NutrientsPer100g: common.NutrientVector{
				Calories: 1, Protein: 0.1, Carbs: 0, Fat: 0,
				Sodium: 2,
			},
		},
		{
			ID: "seed-banana", Name: "Banana", Category: "fruit",
			ServingSize: 118, ServingUnit: "piece", PreparationState: "fresh",
			NutrientsPer100g: common.NutrientVector{
				Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3,
				Fiber: 2.6, Sugar: 12.2, Sodium: 1, VitaminC: 8.7,
			},
		},
		{
			ID: "seed-apple", Name: "Apple", Category: "fruit",
			ServingSize: 182, ServingUnit: "piece", PreparationState: "fresh",
			NutrientsPer100g: common.NutrientVector{
				Calories: 52, Protein: 0.3, Carbs: 13.8, Fat: 0.2,
				Fiber: 2.4, Sugar: 10.4, Sodium: 1, VitaminC: 4.6,
			},
		},
		{
			ID: "seed-salmon", Name: "Salmon", Category: "seafood",
			ServingSize: 100, ServingUnit: "serving", PreparationState: "raw",
			NutrientsPer100g: common.NutrientVector{
				Calories: 208, Protein: 20.4, Carbs: 0, Fat: 13.4,
				Sodium: 59,
			},
		},
		{
			ID: "seed-oats", Name: "Oats", Category: "grains",
			ServingSize: 80, ServingUnit: "cup", PreparationState: "dried",
			NutrientsPer100g: common.NutrientVector{
				Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9,
				Fiber: 10.6, Sugar: 1.0, Sodium: 2, Iron: 4.7,
			},
		},
		{
			ID: "seed-yogurt", Name: "Greek Yogurt", Category: "dairy",
			ServingSize: 245, ServingUnit: "cup", PreparationState: "fermented",
			NutrientsPer100g: common.NutrientVector{
				Calories: 59, Protein: 10.2, Carbs: 3.6, Fat: 0.4,
				Sugar: 3.2, Sodium: 36, Calcium: 110,
			},
		},
	}
}
