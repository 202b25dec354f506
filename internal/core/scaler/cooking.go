package scaler

import "meal-parser/internal/pkg/common"

// Adjustment 單一烹調狀態的逐欄位乘數
// Vitamins 套用於維生素 A/C，Minerals 套用於鈣與鐵
type Adjustment struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Sodium   float64
	Vitamins float64
	Minerals float64
}

// identityAdjustment 不改變任何欄位的乘數列
func identityAdjustment() Adjustment {
	return Adjustment{
		Calories: 1, Protein: 1, Carbs: 1, Fat: 1,
		Fiber: 1, Sugar: 1, Sodium: 1, Vitamins: 1, Minerals: 1,
	}
}

// CookingTable 烹調調整表
// 程序啟動時建立一次，之後只讀，可供併發換算共用
type CookingTable struct {
	rows map[string]Adjustment
}

// NewCookingTable 從乘數列建立查詢表
func NewCookingTable(rows map[string]Adjustment) *CookingTable {
	return &CookingTable{rows: rows}
}

// DefaultCookingTable 內建烹調調整表
// 乘數為啟發式估計值，未知狀態回退為 raw（恆等）
func DefaultCookingTable() *CookingTable {
	id := identityAdjustment()

	row := func(modify func(*Adjustment)) Adjustment {
		a := id
		modify(&a)
		return a
	}

	return NewCookingTable(map[string]Adjustment{
		"raw":   id,
		"fresh": id,
		"cooked": row(func(a *Adjustment) {
			a.Calories = 1.1
			a.Vitamins = 0.85
		}),
		"boiled": row(func(a *Adjustment) {
			a.Calories = 0.95
			a.Sodium = 0.9
			a.Vitamins = 0.7
			a.Minerals = 0.9
		}),
		"steamed": row(func(a *Adjustment) {
			a.Vitamins = 0.85
		}),
		"fried": row(func(a *Adjustment) {
			a.Calories = 1.3
			a.Fat = 1.5
			a.Vitamins = 0.8
		}),
		"pan-fried": row(func(a *Adjustment) {
			a.Calories = 1.2
			a.Fat = 1.3
			a.Vitamins = 0.85
		}),
		"stir-fried": row(func(a *Adjustment) {
			a.Calories = 1.15
			a.Fat = 1.25
			a.Vitamins = 0.85
		}),
		"deep-fried": row(func(a *Adjustment) {
			a.Calories = 1.4
			a.Fat = 1.7
			a.Vitamins = 0.75
		}),
		"baked": row(func(a *Adjustment) {
			a.Calories = 1.05
			a.Vitamins = 0.85
		}),
		"grilled": row(func(a *Adjustment) {
			a.Calories = 1.05
			a.Fat = 0.9
			a.Vitamins = 0.8
		}),
		"roasted": row(func(a *Adjustment) {
			a.Calories = 1.1
			a.Fat = 0.95
			a.Vitamins = 0.8
		}),
		"dried": row(func(a *Adjustment) {
			a.Sugar = 1.2
			a.Vitamins = 0.6
		}),
		"smoked": row(func(a *Adjustment) {
			a.Sodium = 2.0
			a.Vitamins = 0.8
		}),
		"fermented": row(func(a *Adjustment) {
			a.Sugar = 0.7
			a.Vitamins = 1.1
		}),
		"processed": row(func(a *Adjustment) {
			a.Sodium = 1.5
			a.Sugar = 1.2
			a.Vitamins = 0.7
		}),
	})
}

// Lookup 取得烹調狀態的乘數列，未知狀態回傳恆等列
func (t *CookingTable) Lookup(state string) Adjustment {
	if a, ok := t.rows[state]; ok {
		return a
	}
	return identityAdjustment()
}

// Apply 將乘數列套用到營養向量
func (a Adjustment) Apply(v common.NutrientVector) common.NutrientVector {
	return common.NutrientVector{
		Calories: v.Calories * a.Calories,
		Protein:  v.Protein * a.Protein,
		Carbs:    v.Carbs * a.Carbs,
		Fat:      v.Fat * a.Fat,
		Fiber:    v.Fiber * a.Fiber,
		Sugar:    v.Sugar * a.Sugar,
		Sodium:   v.Sodium * a.Sodium,
		VitaminA: v.VitaminA * a.Vitamins,
		VitaminC: v.VitaminC * a.Vitamins,
		Calcium:  v.Calcium * a.Minerals,
		Iron:     v.Iron * a.Minerals,
	}
}
