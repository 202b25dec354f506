package scaler

import (
	"math"
	"strings"
	"time"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// Scaler 營養換算器
// 將比對結果與解析數量換算成帶絕對營養值的食物記錄
// 純計算，無隱藏狀態：相同輸入永遠產生相同的營養值
type Scaler struct {
	cfg     *config.ScalerConfig
	cooking *CookingTable
}

// NewScaler 創建營養換算器
func NewScaler(cfg *config.ScalerConfig, cooking *CookingTable) *Scaler {
	if cooking == nil {
		cooking = DefaultCookingTable()
	}
	return &Scaler{cfg: cfg, cooking: cooking}
}

// Scale 換算單一提及的營養值
// 每個走到這裡的提及都保證產生一筆 FoodItem：
// 無比對結果時以粗略估計代替，數量無效時以 1 份計算而不參與換算
func (s *Scaler) Scale(mention common.ParsedMention, match common.MatchResult, cookingState string) common.FoodItem {
	// 無效數量（<= 0）不得用於換算，保留提及但以單份估計
	quantity := 1.0
	if mention.HasQuantity() {
		quantity = *mention.Quantity
	}

	var (
		name   string
		vector common.NutrientVector
		native string
	)

	if match.BestMatch != nil {
		food := match.BestMatch.Food
		name = food.Name
		native = food.PreparationState

		grams := s.gramsAmount(quantity, mention.Unit, &food)
		factor := grams / 100
		vector = scaleVector(food.NutrientsPer100g, factor)

		common.LogDebug("營養換算",
			zap.String("food", food.Name),
			zap.Float64("grams", grams),
			zap.Float64("scale_factor", factor),
		)
	} else {
		// 無比對：以每 100 單位的估計熱量產生粗略營養值
		name = mention.FoodName
		grams := s.gramsAmount(quantity, mention.Unit, nil)
		vector = s.fallbackVector(grams)

		common.LogDebug("無比對結果，使用粗略估計",
			zap.String("food", name),
			zap.Float64("grams", grams),
		)
	}

	// 烹調狀態與食物原生狀態相同時值已是「存放狀態」，不再調整
	state := strings.ToLower(strings.TrimSpace(cookingState))
	if state != "" && state != strings.ToLower(native) {
		vector = s.cooking.Lookup(state).Apply(vector)
	}
	if state == "" {
		state = native
	}

	vector = roundVector(vector)

	return common.FoodItem{
		ID:           common.GenerateUUID(),
		Name:         name,
		Quantity:     quantity,
		Unit:         mention.Unit,
		CookingState: state,
		Calories:     int(math.Round(vector.Calories)),
		Nutrients:    vector.NutrientList(),
		Timestamp:    time.Now(),
	}
}

// scaleVector 將每 100g 營養向量乘上比例係數
func scaleVector(v common.NutrientVector, factor float64) common.NutrientVector {
	return common.NutrientVector{
		Calories: v.Calories * factor,
		Protein:  v.Protein * factor,
		Carbs:    v.Carbs * factor,
		Fat:      v.Fat * factor,
		Fiber:    v.Fiber * factor,
		Sugar:    v.Sugar * factor,
		Sodium:   v.Sodium * factor,
		VitaminA: v.VitaminA * factor,
		VitaminC: v.VitaminC * factor,
		Calcium:  v.Calcium * factor,
		Iron:     v.Iron * factor,
	}
}

// fallbackVector 粗略估計：以設定的每 100 單位熱量推得總熱量，
// 再按固定熱量比例拆出巨量營養素
// （蛋白質 10%、碳水 50%、脂肪 30%、纖維 5%、糖 20%；鈉以熱量 1% 計毫克）
func (s *Scaler) fallbackVector(grams float64) common.NutrientVector {
	calories := grams * s.cfg.FallbackCaloriesPer100 / 100
	return common.NutrientVector{
		Calories: calories,
		Protein:  calories * 0.10 / 4,
		Carbs:    calories * 0.50 / 4,
		Fat:      calories * 0.30 / 9,
		Fiber:    calories * 0.05 / 4,
		Sugar:    calories * 0.20 / 4,
		Sodium:   calories * 0.01,
	}
}

// roundVector 熱量四捨五入到整數，其餘欄位取一位小數，負值一律歸零
func roundVector(v common.NutrientVector) common.NutrientVector {
	return common.NutrientVector{
		Calories: clampZero(math.Round(v.Calories)),
		Protein:  round1(v.Protein),
		Carbs:    round1(v.Carbs),
		Fat:      round1(v.Fat),
		Fiber:    round1(v.Fiber),
		Sugar:    round1(v.Sugar),
		Sodium:   round1(v.Sodium),
		VitaminA: round1(v.VitaminA),
		VitaminC: round1(v.VitaminC),
		Calcium:  round1(v.Calcium),
		Iron:     round1(v.Iron),
	}
}

func round1(x float64) float64 {
	return clampZero(math.Round(x*10) / 10)
}

func clampZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
