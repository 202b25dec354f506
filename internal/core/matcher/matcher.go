package matcher

import (
	"context"
	"sort"
	"strings"

	"meal-parser/internal/core/catalog"
	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// strategy 單一比對策略
// 各策略共用同一簽名，Matcher 依序執行並在第一個非空結果停止
type strategy struct {
	name string
	run  func(ctx context.Context, foodName string) ([]common.MatchCandidate, error)
}

// Matcher 食物比對器
// 以串接策略（完全 → 子字串 → 同義詞 → 模糊）解析提及名稱
type Matcher struct {
	catalog    catalog.Service
	synonyms   *SynonymTable
	cfg        *config.MatcherConfig
	strategies []strategy
}

// NewMatcher 創建食物比對器
func NewMatcher(cat catalog.Service, synonyms *SynonymTable, cfg *config.MatcherConfig) *Matcher {
	if synonyms == nil {
		synonyms = DefaultSynonymTable()
	}

	m := &Matcher{
		catalog:  cat,
		synonyms: synonyms,
		cfg:      cfg,
	}
	m.strategies = []strategy{
		{name: "exact", run: m.matchExact},
		{name: "partial", run: m.matchPartial},
		{name: "synonym", run: m.matchSynonym},
		{name: "fuzzy", run: m.matchFuzzy},
	}
	return m
}

// Match 解析提及名稱，回傳排序後的候選與消歧標記
// 目錄查詢失敗視為該階段空結果，串接繼續而不中斷；
// 所有階段皆空時 BestMatch 為 nil，由下游產生粗略估計
func (m *Matcher) Match(ctx context.Context, mention common.ParsedMention) common.MatchResult {
	result := common.MatchResult{Mention: mention}

	name := strings.ToLower(strings.TrimSpace(mention.FoodName))
	if name == "" {
		return result
	}

	for _, s := range m.strategies {
		candidates, err := s.run(ctx, name)
		if err != nil {
			// 目錄失敗：記錄後當作空結果，換下一個策略
			common.LogWarn("比對策略查詢失敗",
				zap.String("strategy", s.name),
				zap.String("food_name", name),
				zap.Error(err),
			)
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		result.Candidates = rankCandidates(candidates)
		common.LogDebug("比對策略命中",
			zap.String("strategy", s.name),
			zap.String("food_name", name),
			zap.Int("candidates", len(result.Candidates)),
		)
		break
	}

	if len(result.Candidates) == 0 {
		common.LogInfo("目錄中找不到相符的食物", zap.String("food_name", name))
		return result
	}

	result.BestMatch = &result.Candidates[0]

	// 前兩名信心度差距過小時無法安全自動取捨，交由使用者消歧
	if len(result.Candidates) >= 2 {
		gap := result.Candidates[0].Confidence - result.Candidates[1].Confidence
		if gap < m.cfg.DisambiguationGap {
			result.NeedsDisambiguation = true
			n := m.cfg.SuggestionCount
			if n > len(result.Candidates) {
				n = len(result.Candidates)
			}
			for _, c := range result.Candidates[:n] {
				result.Suggestions = append(result.Suggestions, c.Food.Name)
			}
		}
	}

	return result
}

// matchExact 完全相符：目錄名稱小寫後與提及名稱相等
func (m *Matcher) matchExact(ctx context.Context, name string) ([]common.MatchCandidate, error) {
	foods, err := m.catalog.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	var candidates []common.MatchCandidate
	for _, f := range foods {
		if strings.ToLower(f.Name) == name {
			candidates = append(candidates, common.MatchCandidate{
				Food:       f,
				Confidence: 1.0,
				MatchType:  common.MatchExact,
			})
		}
	}
	return candidates, nil
}

// matchPartial 子字串包含：信心度為較短長度除以較長長度
// 非名稱包含的命中（品牌、分類）給固定信心度
func (m *Matcher) matchPartial(ctx context.Context, name string) ([]common.MatchCandidate, error) {
	foods, err := m.catalog.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	var candidates []common.MatchCandidate
	for _, f := range foods {
		catalogName := strings.ToLower(f.Name)
		confidence := m.cfg.PartialDefaultConfidence
		if strings.Contains(catalogName, name) || strings.Contains(name, catalogName) {
			confidence = containmentScore(name, catalogName)
		}
		candidates = append(candidates, common.MatchCandidate{
			Food:       f,
			Confidence: confidence,
			MatchType:  common.MatchPartial,
		})
	}
	return candidates, nil
}

// matchSynonym 同義詞表命中：每個標準詞各搜尋一次
// 完全同義給較高信心度，提及只是同義詞子字串時較低
func (m *Matcher) matchSynonym(ctx context.Context, name string) ([]common.MatchCandidate, error) {
	terms, exact := m.synonyms.Lookup(name)
	if len(terms) == 0 {
		return nil, nil
	}

	confidence := m.cfg.SynonymConfidence
	if !exact {
		confidence = m.cfg.SynonymPartialConfidence
	}

	seen := make(map[string]bool)
	var candidates []common.MatchCandidate
	var lastErr error
	for _, term := range terms {
		foods, err := m.catalog.Search(ctx, term)
		if err != nil {
			// 單一詞失敗不放棄其餘詞
			lastErr = err
			continue
		}
		for _, f := range foods {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			candidates = append(candidates, common.MatchCandidate{
				Food:       f,
				Confidence: confidence,
				MatchType:  common.MatchSynonym,
			})
		}
	}
	if len(candidates) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return candidates, nil
}

// matchFuzzy 模糊比對：對完整目錄計算正規化編輯距離相似度
// 保留相似度高於閾值者，排序後取前 N 名
func (m *Matcher) matchFuzzy(ctx context.Context, name string) ([]common.MatchCandidate, error) {
	foods, err := m.catalog.Search(ctx, "")
	if err != nil {
		return nil, err
	}

	var candidates []common.MatchCandidate
	for _, f := range foods {
		score := similarity(name, strings.ToLower(f.Name))
		if score > m.cfg.FuzzyMinSimilarity {
			candidates = append(candidates, common.MatchCandidate{
				Food:       f,
				Confidence: score,
				MatchType:  common.MatchFuzzy,
			})
		}
	}

	candidates = rankCandidates(candidates)
	if len(candidates) > m.cfg.FuzzyMaxResults {
		candidates = candidates[:m.cfg.FuzzyMaxResults]
	}
	return candidates, nil
}

// containmentScore 不對稱包含分數：較短長度 / 較長長度
func containmentScore(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

// rankCandidates 依信心度由高至低排序，同分時按名稱排序保證輸出穩定
func rankCandidates(candidates []common.MatchCandidate) []common.MatchCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Food.Name < candidates[j].Food.Name
	})
	return candidates
}
