package matcher

import "strings"

// SynonymTable 靜態雙向同義詞表
// 將提及名稱映射到一個以上的標準搜尋詞
// 啟動時建立一次，之後只讀，可供併發比對共用
type SynonymTable struct {
	// canonical → 同義詞列表
	groups map[string][]string
}

// NewSynonymTable 從同義詞組建立查詢表
func NewSynonymTable(groups map[string][]string) *SynonymTable {
	return &SynonymTable{groups: groups}
}

// DefaultSynonymTable 內建同義詞表
func DefaultSynonymTable() *SynonymTable {
	return NewSynonymTable(map[string][]string{
		"chicken": {"poultry", "hen", "fowl"},
		"bread":   {"brioche", "loaf", "toast", "baguette", "bun"},
		"beef":    {"steak", "ground beef"},
		"pork":    {"ham", "bacon"},
		"fish":    {"salmon", "tuna", "cod"},
		"pasta":   {"noodles", "spaghetti", "macaroni"},
		"potato":  {"spud", "potatoes"},
		"soda":    {"soft drink", "pop", "cola"},
		"coffee":  {"espresso", "americano"},
		"milk":    {"dairy milk"},
		"yogurt":  {"yoghurt", "curd"},
		"oats":    {"oatmeal", "porridge"},
	})
}

// Lookup 查找提及名稱對應的標準搜尋詞
// exact 表示名稱與某個詞完全相符；false 表示名稱只是已知同義詞的子字串
func (t *SynonymTable) Lookup(name string) (terms []string, exact bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false
	}

	seen := make(map[string]bool)
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	// 完全相符優先
	for canonical, aliases := range t.groups {
		if name == canonical {
			add(canonical)
			exact = true
			continue
		}
		for _, alias := range aliases {
			if name == alias {
				add(canonical)
				exact = true
			}
		}
	}
	if exact {
		return terms, true
	}

	// 子字串相符：較弱的訊號（名稱太短時不比，避免雜訊）
	if len(name) < 3 {
		return nil, false
	}
	for canonical, aliases := range t.groups {
		if strings.Contains(canonical, name) {
			add(canonical)
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(alias, name) {
				add(canonical)
				break
			}
		}
	}
	return terms, false
}
