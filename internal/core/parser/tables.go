package parser

// Tables 解析器使用的靜態查詢表
// 啟動時建立一次，之後只讀，多個併發解析可安全共用
type Tables struct {
	QuantityWords  map[string]float64 // 數量詞 → 數值
	UnitAliases    map[string]string  // 單位拼寫 → 標準單位
	CookingMethods []string           // 烹調方式詞彙（長詞在前）
	FillerPhrases  []string           // 需要剝除的口語填充片語
	LeadIns        []string           // 語句開頭的敘述片語
	Separators     []string           // 片段分隔符
}

// DefaultTables 建立預設查詢表
func DefaultTables() *Tables {
	return &Tables{
		QuantityWords: map[string]float64{
			"a":       1,
			"an":      1,
			"one":     1,
			"two":     2,
			"three":   3,
			"four":    4,
			"five":    5,
			"six":     6,
			"seven":   7,
			"eight":   8,
			"nine":    9,
			"ten":     10,
			"couple":  2,
			"few":     3,
			"several": 3,
			"half":    0.5,
			"quarter": 0.25,
			"dozen":   12,
		},
		UnitAliases: map[string]string{
			// 重量
			"g":      "g",
			"gram":   "g",
			"grams":  "g",
			"kg":     "kg",
			"kilo":   "kg",
			"kilos":  "kg",
			"mg":     "mg",
			"oz":     "oz",
			"ounce":  "oz",
			"ounces": "oz",
			"lb":     "lb",
			"lbs":    "lb",
			"pound":  "lb",
			"pounds": "lb",

			// 體積
			"ml":          "ml",
			"milliliter":  "ml",
			"milliliters": "ml",
			"l":           "l",
			"liter":       "l",
			"liters":      "l",
			"litre":       "l",
			"litres":      "l",

			// 廚房量具
			"cup":         "cup",
			"cups":        "cup",
			"tbsp":        "tbsp",
			"tablespoon":  "tbsp",
			"tablespoons": "tbsp",
			"tsp":         "tsp",
			"teaspoon":    "tsp",
			"teaspoons":   "tsp",

			// 計數單位
			"slice":    "slice",
			"slices":   "slice",
			"piece":    "piece",
			"pieces":   "piece",
			"serving":  "serving",
			"servings": "serving",
			"bowl":     "bowl",
			"bowls":    "bowl",
			"glass":    "glass",
			"glasses":  "glass",
			"can":      "can",
			"cans":     "can",
			"bottle":   "bottle",
			"bottles":  "bottle",
		},
		// 長詞在前，避免 "pan-fried" 被 "fried" 先命中
		CookingMethods: []string{
			"pan-fried",
			"stir-fried",
			"deep-fried",
			"fermented",
			"processed",
			"roasted",
			"steamed",
			"grilled",
			"smoked",
			"boiled",
			"cooked",
			"fried",
			"baked",
			"dried",
			"fresh",
			"raw",
		},
		FillerPhrases: []string{
			"for breakfast",
			"for lunch",
			"for dinner",
			"for brunch",
			"for a snack",
			"as a snack",
			"this morning",
			"this afternoon",
			"this evening",
			"last night",
			"today",
			"yesterday",
		},
		LeadIns: []string{
			"i had",
			"i ate",
			"i drank",
			"i have eaten",
			"i just had",
			"i just ate",
			"had",
			"ate",
			"drank",
		},
		Separators: []string{
			" and ",
			",",
			" with ",
			"+",
		},
	}
}
