package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"meal-parser/internal/pkg/common"
)

// 信心度計分：每成功抽取一項屬性就加分，只增不減
const (
	confBase     = 0.5 // 基礎分
	confQuantity = 0.2 // 解析到數量
	confUnit     = 0.2 // 解析到單位
	confName     = 0.1 // 名稱長度大於 2
	confCap      = 1.0
)

// Parser 語句解析器
// 將自由文字切分為食物提及，抽取數量、單位與烹調方式
// 純函數行為：輸出只依賴輸入與靜態查詢表
type Parser struct {
	tables *Tables

	cookingRe     *regexp.Regexp
	numeralUnitRe *regexp.Regexp
	wordUnitRe    *regexp.Regexp
	numeralRe     *regexp.Regexp
	wordRe        *regexp.Regexp
}

// NewParser 創建語句解析器
func NewParser(tables *Tables) *Parser {
	if tables == nil {
		tables = DefaultTables()
	}

	unitAlt := alternation(keysOf(tables.UnitAliases))
	wordAlt := alternation(keysOf(tables.QuantityWords))
	cookingAlt := alternation(tables.CookingMethods)

	return &Parser{
		tables:    tables,
		cookingRe: regexp.MustCompile(`\b(` + cookingAlt + `)\b`),
		// 規則族一：數字 + 單位詞（"2 slices of bread"、"100g rice"）
		numeralUnitRe: regexp.MustCompile(`\b(\d+(?:\.\d+)?|\d+\s*/\s*\d+)\s*(` + unitAlt + `)\b`),
		// 規則族二：數量詞 + 單位詞（"a cup of coffee"、"half slice"）
		wordUnitRe: regexp.MustCompile(`\b(` + wordAlt + `)\s+(` + unitAlt + `)\b`),
		// 後備：只有數字（"2 eggs"）
		numeralRe: regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`),
		// 後備：開頭只有數量詞（"a banana"）
		wordRe: regexp.MustCompile(`^(` + wordAlt + `)\s+`),
	}
}

// Parse 將語句解析為有序的食物提及列表
func (p *Parser) Parse(text string) []common.ParsedMention {
	cleaned := p.stripFillers(strings.ToLower(strings.TrimSpace(text)))
	if cleaned == "" {
		return nil
	}

	var mentions []common.ParsedMention
	for _, segment := range p.splitSegments(cleaned) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		rawText := segment

		// 先抽烹調方式，再抽數量與單位，剩下的就是食物名稱
		method, segment := p.extractCookingMethod(segment)
		quantity, unit, segment := p.extractQuantity(segment)
		name := p.cleanFoodName(segment)

		// 只剩烹調方式、沒有名稱的片段不是食物
		if name == "" {
			continue
		}

		confidence := confBase
		if quantity != nil && *quantity > 0 {
			confidence += confQuantity
		}
		if unit != "" {
			confidence += confUnit
		}
		if len(name) > 2 {
			confidence += confName
		}
		if confidence > confCap {
			confidence = confCap
		}

		mentions = append(mentions, common.ParsedMention{
			RawText:       rawText,
			FoodName:      name,
			Quantity:      quantity,
			Unit:          unit,
			CookingMethod: method,
			Confidence:    confidence,
		})
	}

	return mentions
}

// stripFillers 剝除開頭敘述與填充片語
func (p *Parser) stripFillers(text string) string {
	for _, lead := range p.tables.LeadIns {
		if strings.HasPrefix(text, lead+" ") {
			text = strings.TrimPrefix(text, lead+" ")
			break
		}
	}
	for _, filler := range p.tables.FillerPhrases {
		text = strings.ReplaceAll(text, filler, " ")
	}
	return strings.TrimSpace(text)
}

// splitSegments 依分隔符切分語句
func (p *Parser) splitSegments(text string) []string {
	segments := []string{text}
	for _, sep := range p.tables.Separators {
		var next []string
		for _, seg := range segments {
			next = append(next, strings.Split(seg, sep)...)
		}
		segments = next
	}
	return segments
}

// extractCookingMethod 以詞彙表比對抽取烹調方式，並從片段移除該詞
func (p *Parser) extractCookingMethod(segment string) (string, string) {
	loc := p.cookingRe.FindStringIndex(segment)
	if loc == nil {
		return "", segment
	}
	method := segment[loc[0]:loc[1]]
	rest := segment[:loc[0]] + " " + segment[loc[1]:]
	return method, rest
}

// extractQuantity 依序嘗試各規則族，第一個產生有效結果的獲勝
// 回傳（數量、標準單位、剩餘文字）
func (p *Parser) extractQuantity(segment string) (*float64, string, string) {
	// 規則族一：數字 + 單位詞
	if m := p.numeralUnitRe.FindStringSubmatchIndex(segment); m != nil {
		qty := parseNumeral(segment[m[2]:m[3]])
		unit := p.tables.UnitAliases[segment[m[4]:m[5]]]
		rest := segment[:m[0]] + " " + segment[m[1]:]
		return &qty, unit, rest
	}

	// 規則族二：數量詞 + 單位詞
	if m := p.wordUnitRe.FindStringSubmatchIndex(segment); m != nil {
		qty := p.tables.QuantityWords[segment[m[2]:m[3]]]
		unit := p.tables.UnitAliases[segment[m[4]:m[5]]]
		rest := segment[:m[0]] + " " + segment[m[1]:]
		return &qty, unit, rest
	}

	// 後備：只有數字
	if m := p.numeralRe.FindStringSubmatchIndex(segment); m != nil {
		qty := parseNumeral(segment[m[2]:m[3]])
		rest := segment[:m[0]] + " " + segment[m[1]:]
		return &qty, "", rest
	}

	// 後備：開頭只有數量詞
	if m := p.wordRe.FindStringSubmatchIndex(segment); m != nil {
		qty := p.tables.QuantityWords[segment[m[2]:m[3]]]
		rest := segment[m[1]:]
		return &qty, "", rest
	}

	return nil, "", segment
}

// cleanFoodName 清理食物名稱：去除開頭的冠詞與 of/the、壓縮空白
func (p *Parser) cleanFoodName(segment string) string {
	fields := strings.Fields(segment)
	for len(fields) > 0 {
		switch fields[0] {
		case "of", "the", "a", "an", "some":
			fields = fields[1:]
		default:
			return strings.Join(fields, " ")
		}
	}
	return ""
}

// parseNumeral 解析數字字面值，支援小數與分數
func parseNumeral(s string) float64 {
	s = strings.ReplaceAll(s, " ", "")
	if idx := strings.Index(s, "/"); idx > 0 {
		num, err1 := strconv.ParseFloat(s[:idx], 64)
		den, err2 := strconv.ParseFloat(s[idx+1:], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// keysOf 取出表的所有鍵
func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// alternation 將詞彙組成正則 alternation，長詞在前避免被短詞截斷
func alternation(words []string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
