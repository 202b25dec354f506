package meal

import (
	"context"
	"sync"
	"time"

	"meal-parser/internal/core/entry"
	"meal-parser/internal/core/llm"
	"meal-parser/internal/core/matcher"
	"meal-parser/internal/core/parser"
	"meal-parser/internal/core/scaler"
	"meal-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// ParsedFood 單一提及走完管線後的完整結果
type ParsedFood struct {
	Mention             common.ParsedMention `json:"mention"`
	MatchType           string               `json:"match_type,omitempty"`
	MatchConfidence     float64              `json:"match_confidence,omitempty"`
	NeedsDisambiguation bool                 `json:"needs_disambiguation"`
	Suggestions         []string             `json:"suggestions,omitempty"`
	Item                common.FoodItem      `json:"item"`
}

// ParseResult 整句語句的管線輸出，順序與語句中的提及一致
type ParseResult struct {
	Utterance string       `json:"utterance"`
	Foods     []ParsedFood `json:"foods"`
}

// Service 餐點解析服務
// 串起解析、比對、換算三段管線；請求之間無共享可變狀態
type Service struct {
	parser   *parser.Parser
	matcher  *matcher.Matcher
	scaler   *scaler.Scaler
	enhancer *llm.Enhancer
	store    entry.Store
	workers  int
}

// NewService 創建餐點解析服務
// enhancer 可為 nil（停用 LLM 路徑）；workers 小於 1 時視為 1
func NewService(p *parser.Parser, m *matcher.Matcher, s *scaler.Scaler, e *llm.Enhancer, store entry.Store, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		parser:   p,
		matcher:  m,
		scaler:   s,
		enhancer: e,
		store:    store,
		workers:  workers,
	}
}

// Parse 解析語句並產生營養換算後的食物結果
// 提及之間彼此獨立，比對可並行，但輸出保持原始提及順序
func (s *Service) Parse(ctx context.Context, utterance string) (*ParseResult, error) {
	start := time.Now()

	mentions := s.extractMentions(ctx, utterance)
	if len(mentions) == 0 {
		return nil, common.NewValidationError("語句中沒有可辨識的食物")
	}

	matches := s.matchAll(ctx, mentions)

	foods := make([]ParsedFood, len(mentions))
	for i, mention := range mentions {
		item := s.scaler.Scale(mention, matches[i], mention.CookingMethod)
		food := ParsedFood{
			Mention:             mention,
			NeedsDisambiguation: matches[i].NeedsDisambiguation,
			Suggestions:         matches[i].Suggestions,
			Item:                item,
		}
		if matches[i].BestMatch != nil {
			food.MatchType = string(matches[i].BestMatch.MatchType)
			food.MatchConfidence = matches[i].BestMatch.Confidence
		}
		foods[i] = food
	}

	common.LogInfo("餐點解析完成",
		zap.Int("mentions", len(mentions)),
		zap.Duration("duration", time.Since(start)),
	)

	return &ParseResult{Utterance: utterance, Foods: foods}, nil
}

// Log 解析語句並將結果存入飲食記錄
func (s *Service) Log(ctx context.Context, userID, utterance string) (*ParseResult, error) {
	result, err := s.Parse(ctx, utterance)
	if err != nil {
		return nil, err
	}

	items := make([]common.FoodItem, len(result.Foods))
	for i, f := range result.Foods {
		items[i] = f.Item
	}
	if err := s.store.Save(ctx, userID, items); err != nil {
		common.LogError("飲食記錄儲存失敗", zap.String("user_id", userID), zap.Error(err))
		return nil, common.ErrEntryStoreError
	}

	common.LogInfo("飲食記錄已儲存",
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
	)
	return result, nil
}

// Daily 取得使用者某日的記錄與營養加總
func (s *Service) Daily(ctx context.Context, userID string, date time.Time) ([]common.FoodItem, entry.DailyTotals, error) {
	items, err := s.store.ListByDate(ctx, userID, date)
	if err != nil {
		common.LogError("飲食記錄讀取失敗", zap.String("user_id", userID), zap.Error(err))
		return nil, entry.DailyTotals{}, common.ErrEntryStoreError
	}
	return items, entry.ComputeTotals(date, items), nil
}

// extractMentions 取得語句提及
// LLM 路徑啟用時優先嘗試，任何失敗都退回規則解析
func (s *Service) extractMentions(ctx context.Context, utterance string) []common.ParsedMention {
	if s.enhancer != nil && s.enhancer.Enabled() {
		mentions, err := s.enhancer.Enhance(ctx, utterance)
		if err == nil {
			return mentions
		}
		common.LogWarn("LLM 解析失敗，退回規則解析", zap.Error(err))
	}
	return s.parser.Parse(utterance)
}

// matchAll 以固定上限的工作者並行比對提及，結果按原始索引放回
func (s *Service) matchAll(ctx context.Context, mentions []common.ParsedMention) []common.MatchResult {
	results := make([]common.MatchResult, len(mentions))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, mention := range mentions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, mention common.ParsedMention) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.matcher.Match(ctx, mention)
		}(i, mention)
	}
	wg.Wait()

	return results
}
