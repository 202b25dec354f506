package entry

import (
	"context"
	"math"
	"time"

	"meal-parser/internal/pkg/common"
)

// Store 飲食記錄存放介面
// 記錄以使用者與日期分桶，寫入後不再修改
type Store interface {
	Save(ctx context.Context, userID string, items []common.FoodItem) error
	ListByDate(ctx context.Context, userID string, date time.Time) ([]common.FoodItem, error)
	Close() error
}

// DailyTotals 單日營養加總
type DailyTotals struct {
	Date      string  `json:"date"`
	ItemCount int     `json:"item_count"`
	Calories  int     `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Sugar     float64 `json:"sugar"`
	Sodium    float64 `json:"sodium"`
}

// dateKey 統一的日期鍵格式
func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// ComputeTotals 將一日的記錄加總成營養摘要
func ComputeTotals(date time.Time, items []common.FoodItem) DailyTotals {
	totals := DailyTotals{
		Date:      dateKey(date),
		ItemCount: len(items),
	}
	for _, item := range items {
		totals.Calories += item.Calories
		for _, n := range item.Nutrients {
			switch n.Name {
			case "protein":
				totals.Protein += n.Amount
			case "carbs":
				totals.Carbs += n.Amount
			case "fat":
				totals.Fat += n.Amount
			case "fiber":
				totals.Fiber += n.Amount
			case "sugar":
				totals.Sugar += n.Amount
			case "sodium":
				totals.Sodium += n.Amount
			}
		}
	}
	totals.Protein = round1(totals.Protein)
	totals.Carbs = round1(totals.Carbs)
	totals.Fat = round1(totals.Fat)
	totals.Fiber = round1(totals.Fiber)
	totals.Sugar = round1(totals.Sugar)
	totals.Sodium = round1(totals.Sodium)
	return totals
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
