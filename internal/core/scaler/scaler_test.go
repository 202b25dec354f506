package scaler

import (
	"reflect"
	"testing"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"
)

func testScalerConfig() *config.ScalerConfig {
	return &config.ScalerConfig{
		UnitGrams: map[string]float64{
			"piece":   50,
			"slice":   25,
			"cup":     240,
			"tbsp":    15,
			"tsp":     5,
			"serving": 100,
		},
		FallbackCaloriesPer100: 100,
	}
}

func qty(v float64) *float64 { return &v }

func breadFood() common.CatalogFood {
	return common.CatalogFood{
		ID: "bread", Name: "Bread", PreparationState: "raw",
		NutrientsPer100g: common.NutrientVector{
			Calories: 265, Protein: 9.0, Carbs: 49.0, Fat: 3.2,
		},
	}
}

func matchFor(food common.CatalogFood) common.MatchResult {
	c := common.MatchCandidate{Food: food, Confidence: 1.0, MatchType: common.MatchExact}
	return common.MatchResult{Candidates: []common.MatchCandidate{c}, BestMatch: &c}
}

func nutrientAmount(t *testing.T, item common.FoodItem, name string) float64 {
	t.Helper()
	for _, n := range item.Nutrients {
		if n.Name == name {
			return n.Amount
		}
	}
	t.Fatalf("nutrient %q not found in %v", name, item.Nutrients)
	return 0
}

func TestScaleBreadSlices(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		RawText: "2 slices of bread", FoodName: "bread",
		Quantity: qty(2), Unit: "slice", Confidence: 0.9,
	}

	item := s.Scale(mention, matchFor(breadFood()), "")

	// 2 片 × 25g = 50g，係數 0.5：265 × 0.5 = 132.5 → 133
	if item.Calories != 133 {
		t.Errorf("calories = %d, want 133", item.Calories)
	}
	if item.Name != "Bread" {
		t.Errorf("name = %q, want Bread", item.Name)
	}
	if got := nutrientAmount(t, item, "protein"); got != 4.5 {
		t.Errorf("protein = %f, want 4.5", got)
	}
	if item.Quantity != 2 || item.Unit != "slice" {
		t.Errorf("quantity/unit = %f/%q, want 2/slice", item.Quantity, item.Unit)
	}
}

func TestScaleFallbackCoffee(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		RawText: "a cup of coffee", FoodName: "coffee",
		Quantity: qty(1), Unit: "cup", Confidence: 0.9,
	}

	item := s.Scale(mention, common.MatchResult{}, "")

	// 無比對：240g × 100 kcal/100 單位 = 240 kcal
	if item.Calories != 240 {
		t.Errorf("calories = %d, want 240", item.Calories)
	}
	if item.Name != "coffee" {
		t.Errorf("name = %q, want raw mention name", item.Name)
	}
	// 蛋白質 = 240 × 10% / 4 = 6.0
	if got := nutrientAmount(t, item, "protein"); got != 6.0 {
		t.Errorf("protein = %f, want 6.0", got)
	}
	// 碳水 = 240 × 50% / 4 = 30.0
	if got := nutrientAmount(t, item, "carbs"); got != 30.0 {
		t.Errorf("carbs = %f, want 30.0", got)
	}
	// 鈉 = 熱量的 1% = 2.4 mg
	if got := nutrientAmount(t, item, "sodium"); got != 2.4 {
		t.Errorf("sodium = %f, want 2.4", got)
	}
}

func TestScaleWeightUnitDirect(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(100), Unit: "g", Confidence: 0.9,
	}

	item := s.Scale(mention, matchFor(breadFood()), "")
	if item.Calories != 265 {
		t.Errorf("calories = %d, want 265", item.Calories)
	}
}

func TestScaleCookingAdjustment(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(100), Unit: "g", Confidence: 0.9,
	}

	item := s.Scale(mention, matchFor(breadFood()), "fried")

	// fried：熱量 ×1.3，脂肪 ×1.5
	if item.Calories != 345 {
		t.Errorf("calories = %d, want 345", item.Calories)
	}
	if got := nutrientAmount(t, item, "fat"); got != 4.8 {
		t.Errorf("fat = %f, want 4.8", got)
	}
	if item.CookingState != "fried" {
		t.Errorf("cooking state = %q, want fried", item.CookingState)
	}
}

func TestScaleNativeStateNoAdjustment(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	food := breadFood()
	food.PreparationState = "fried"
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(100), Unit: "g", Confidence: 0.9,
	}

	// 要求的烹調狀態等於食物原生狀態：值已是存放狀態，不再調整
	item := s.Scale(mention, matchFor(food), "fried")
	if item.Calories != 265 {
		t.Errorf("calories = %d, want 265 (no adjustment)", item.Calories)
	}
}

func TestScaleUnknownStateIdentity(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(100), Unit: "g", Confidence: 0.9,
	}

	item := s.Scale(mention, matchFor(breadFood()), "sous-vide")
	if item.Calories != 265 {
		t.Errorf("calories = %d, want 265 (unknown state falls back to identity)", item.Calories)
	}
}

func TestScaleUserDefinedServingOverride(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	food := common.CatalogFood{
		ID: "my-bread", Name: "My Bread", IsUserDefined: true,
		ServingSize: 40, ServingUnit: "slices", PreparationState: "raw",
		NutrientsPer100g: common.NutrientVector{Calories: 250},
	}
	mention := common.ParsedMention{
		FoodName: "my bread", Quantity: qty(2), Unit: "slice", Confidence: 0.9,
	}

	// 食物宣告份量 40g/slice 優先於通用的 25g：2 × 40g = 80g → 200 kcal
	item := s.Scale(mention, matchFor(food), "")
	if item.Calories != 200 {
		t.Errorf("calories = %d, want 200", item.Calories)
	}
}

func TestScaleInvalidQuantityUsesSingleServing(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(-2), Unit: "slice", Confidence: 0.5,
	}

	// 無效數量不得參與換算，以 1 份計
	item := s.Scale(mention, matchFor(breadFood()), "")
	if item.Quantity != 1 {
		t.Errorf("quantity = %f, want 1", item.Quantity)
	}
	// 1 × 25g → 66.25 → 66
	if item.Calories != 66 {
		t.Errorf("calories = %d, want 66", item.Calories)
	}
}

func TestScaleUnknownUnitDefaultServing(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(1), Unit: "", Confidence: 0.5,
	}

	// 無單位：預設 100g 一份
	item := s.Scale(mention, matchFor(breadFood()), "")
	if item.Calories != 265 {
		t.Errorf("calories = %d, want 265", item.Calories)
	}
}

func TestScaleIdempotent(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(3), Unit: "slice", Confidence: 0.9,
	}
	match := matchFor(breadFood())

	a := s.Scale(mention, match, "baked")
	b := s.Scale(mention, match, "baked")

	if a.Calories != b.Calories {
		t.Errorf("calories differ: %d vs %d", a.Calories, b.Calories)
	}
	if !reflect.DeepEqual(a.Nutrients, b.Nutrients) {
		t.Errorf("nutrients differ:\n%v\n%v", a.Nutrients, b.Nutrients)
	}
}

func TestScaleNeverNegative(t *testing.T) {
	s := NewScaler(testScalerConfig(), nil)
	food := breadFood()
	food.NutrientsPer100g.Fat = -1.0
	mention := common.ParsedMention{
		FoodName: "bread", Quantity: qty(100), Unit: "g", Confidence: 0.9,
	}

	item := s.Scale(mention, matchFor(food), "")
	if got := nutrientAmount(t, item, "fat"); got != 0 {
		t.Errorf("fat = %f, want 0 (floored)", got)
	}
}
