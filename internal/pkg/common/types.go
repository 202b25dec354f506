package common

import (
	"fmt"
	"strings"
	"time"
)

// ParsedMention 從語句中解析出的單一食物提及
// 由 Utterance Parser 產生，產生後不再修改，交由 Food Matcher 消費
type ParsedMention struct {
	RawText       string   `json:"raw_text"`                 // 原始片段文字
	FoodName      string   `json:"food_name"`                // 清理後的食物名稱
	Quantity      *float64 `json:"quantity,omitempty"`       // 數量（未解析到為 nil）
	Unit          string   `json:"unit,omitempty"`           // 標準化單位（g、cup、slice...）
	CookingMethod string   `json:"cooking_method,omitempty"` // 烹調方式（boiled、fried...）
	Confidence    float64  `json:"confidence"`               // 解析信心度 [0,1]
}

// NutrientVector 每 100g 的營養成分向量，所有數值皆不為負
type NutrientVector struct {
	Calories float64 `json:"calories"` // kcal
	Protein  float64 `json:"protein"`  // g
	Carbs    float64 `json:"carbs"`    // g
	Fat      float64 `json:"fat"`      // g
	Fiber    float64 `json:"fiber"`    // g
	Sugar    float64 `json:"sugar"`    // g
	Sodium   float64 `json:"sodium"`   // mg

	// 可選微量營養素
	VitaminA float64 `json:"vitamin_a,omitempty"` // µg
	VitaminC float64 `json:"vitamin_c,omitempty"` // mg
	Calcium  float64 `json:"calcium,omitempty"`   // mg
	Iron     float64 `json:"iron,omitempty"`      // mg
}

// CatalogFood 食品目錄中的食物條目
// 由外部目錄服務擁有，核心只讀取
type CatalogFood struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Brand            string         `json:"brand,omitempty"`
	Category         string         `json:"category,omitempty"`
	ServingSize      float64        `json:"serving_size"` // 單份大小
	ServingUnit      string         `json:"serving_unit"` // 單份單位
	NutrientsPer100g NutrientVector `json:"nutrients_per_100g"`
	PreparationState string         `json:"preparation_state"` // 儲存時的烹調狀態
	IsUserDefined    bool           `json:"is_user_defined"`   // 使用者自訂食物
}

// MatchType 比對策略類型
type MatchType string

const (
	MatchExact   MatchType = "exact"   // 名稱完全相符
	MatchPartial MatchType = "partial" // 子字串包含
	MatchSynonym MatchType = "synonym" // 同義詞表命中
	MatchFuzzy   MatchType = "fuzzy"   // 編輯距離模糊比對
)

// MatchCandidate 目錄比對候選結果
type MatchCandidate struct {
	Food       CatalogFood `json:"food"`
	Confidence float64     `json:"confidence"`
	MatchType  MatchType   `json:"match_type"`
}

// MatchResult 單一提及的完整比對結果
// Candidates 依信心度由高至低排序
type MatchResult struct {
	Mention             ParsedMention    `json:"mention"`
	Candidates          []MatchCandidate `json:"candidates"`
	BestMatch           *MatchCandidate  `json:"best_match,omitempty"`
	NeedsDisambiguation bool             `json:"needs_disambiguation"`
	Suggestions         []string         `json:"suggestions,omitempty"`
}

// NutrientInfo 單一營養素的絕對數值
type NutrientInfo struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// FoodItem 管線最終輸出：依數量與烹調方式換算後的食物記錄
// 每個走到 Scaler 的提及都會產生一筆，產生後不再修改
type FoodItem struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Quantity     float64        `json:"quantity"`
	Unit         string         `json:"unit"`
	CookingState string         `json:"cooking_state"`
	Calories     int            `json:"calories"`
	Nutrients    []NutrientInfo `json:"nutrients"`
	Timestamp    time.Time      `json:"timestamp"`
}

// HasQuantity 檢查提及是否帶有有效數量
func (m ParsedMention) HasQuantity() bool {
	return m.Quantity != nil && *m.Quantity > 0
}

// QuantityOrDefault 取得數量，未解析到時回傳預設值
func (m ParsedMention) QuantityOrDefault(def float64) float64 {
	if m.Quantity != nil {
		return *m.Quantity
	}
	return def
}

// FormatMentions 格式化提及列表（除錯與日誌用）
func FormatMentions(mentions []ParsedMention) string {
	var sb strings.Builder
	for _, m := range mentions {
		qty := "?"
		if m.Quantity != nil {
			qty = fmt.Sprintf("%g", *m.Quantity)
		}
		sb.WriteString(fmt.Sprintf("- %s x%s %s (%.2f)\n",
			m.FoodName, qty, m.Unit, m.Confidence))
	}
	return sb.String()
}

// NutrientList 將營養向量展開為有序的 NutrientInfo 序列
// 順序固定，保證輸出可重現
func (v NutrientVector) NutrientList() []NutrientInfo {
	list := []NutrientInfo{
		{Name: "protein", Amount: v.Protein, Unit: "g"},
		{Name: "carbs", Amount: v.Carbs, Unit: "g"},
		{Name: "fat", Amount: v.Fat, Unit: "g"},
		{Name: "fiber", Amount: v.Fiber, Unit: "g"},
		{Name: "sugar", Amount: v.Sugar, Unit: "g"},
		{Name: "sodium", Amount: v.Sodium, Unit: "mg"},
	}
	if v.VitaminA > 0 {
		list = append(list, NutrientInfo{Name: "vitamin_a", Amount: v.VitaminA, Unit: "µg"})
	}
	if v.VitaminC > 0 {
		list = append(list, NutrientInfo{Name: "vitamin_c", Amount: v.VitaminC, Unit: "mg"})
	}
	if v.Calcium > 0 {
		list = append(list, NutrientInfo{Name: "calcium", Amount: v.Calcium, Unit: "mg"})
	}
	if v.Iron > 0 {
		list = append(list, NutrientInfo{Name: "iron", Amount: v.Iron, Unit: "mg"})
	}
	return list
}
