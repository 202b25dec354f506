package scaler

import (
	"strings"

	"meal-parser/internal/pkg/common"
)

// weightGrams 重量單位 → 克
var weightGrams = map[string]float64{
	"g":  1,
	"kg": 1000,
	"mg": 0.001,
	"oz": 28.35,
	"lb": 453.59,
}

// volumeGrams 體積單位 → 克（以水的密度近似，1ml ≈ 1g）
var volumeGrams = map[string]float64{
	"ml": 1,
	"l":  1000,
}

// defaultServingGrams 無單位或未知單位時的預設份量
const defaultServingGrams = 100

// gramsAmount 將數量與標準單位換算成絕對克數
// 重量與體積單位直接換算；計數單位（piece、slice、cup 等）
// 查設定中的通用克數表。食物自帶份量單位且與提及單位相符時，
// 以食物宣告的份量覆蓋通用預設（特定規則優先於通用規則）
func (s *Scaler) gramsAmount(quantity float64, unit string, food *common.CatalogFood) float64 {
	unit = strings.ToLower(strings.TrimSpace(unit))

	if food != nil && food.IsUserDefined && food.ServingSize > 0 && unitMatches(unit, food.ServingUnit) {
		return quantity * food.ServingSize
	}

	if g, ok := weightGrams[unit]; ok {
		return quantity * g
	}
	if g, ok := volumeGrams[unit]; ok {
		return quantity * g
	}
	if g, ok := s.cfg.UnitGrams[unit]; ok {
		return quantity * g
	}

	return quantity * defaultServingGrams
}

// unitMatches 比較提及單位與食物份量單位，容忍單複數差異
func unitMatches(unit, servingUnit string) bool {
	servingUnit = strings.ToLower(strings.TrimSpace(servingUnit))
	if unit == "" || servingUnit == "" {
		return false
	}
	if unit == servingUnit {
		return true
	}
	return strings.TrimSuffix(unit, "s") == strings.TrimSuffix(servingUnit, "s")
}
