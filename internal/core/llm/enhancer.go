package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Enhancer LLM 強化解析器
// 可選路徑：把語句交給 LLM 抽取提及，任何失敗都交由呼叫端
// 退回規則解析，絕不阻斷管線
type Enhancer struct {
	config *config.LLMConfig
	client *resty.Client
}

// NewEnhancer 創建 LLM 強化解析器
func NewEnhancer(cfg *config.LLMConfig) *Enhancer {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("X-Title", "Meal Parser")

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Enhancer{
		config: cfg,
		client: client,
	}
}

// Enabled 是否啟用 LLM 路徑
func (e *Enhancer) Enabled() bool {
	return e.config.Enabled && e.config.APIKey != ""
}

const extractPrompt = `Extract every food mention from the meal description below.
Respond with ONLY a JSON object of the form:
{"mentions":[{"food_name":"...","quantity":1.0,"unit":"g","cooking_method":"fried","confidence":0.9}]}
Omit quantity/unit/cooking_method when absent. Canonical units: g, kg, oz, lb, ml, l, cup, tbsp, tsp, slice, piece, serving.
Meal description: `

// Enhance 以 LLM 抽取語句中的食物提及
// 回傳錯誤時呼叫端應退回規則解析
func (e *Enhancer) Enhance(ctx context.Context, utterance string) ([]common.ParsedMention, error) {
	if !e.Enabled() {
		return nil, fmt.Errorf("llm enhancer is disabled")
	}

	req := map[string]interface{}{
		"model": e.config.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": extractPrompt + strings.TrimSpace(utterance),
			},
		},
		"max_tokens": e.config.MaxTokens,
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	mentions, err := parseMentions(result.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	common.LogDebug("LLM 解析完成",
		zap.Int("mentions", len(mentions)),
		zap.String("model", e.config.Model),
	)
	return mentions, nil
}

// parseMentions 解析 LLM 回應中的 JSON，並夾住信心度範圍
func parseMentions(content string) ([]common.ParsedMention, error) {
	payload := common.ExtractJSONObject(content)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in LLM response")
	}

	var parsed struct {
		Mentions []struct {
			FoodName      string   `json:"food_name"`
			Quantity      *float64 `json:"quantity"`
			Unit          string   `json:"unit"`
			CookingMethod string   `json:"cooking_method"`
			Confidence    float64  `json:"confidence"`
		} `json:"mentions"`
	}
	if err := common.ParseJSON(payload, &parsed); err != nil {
		// 偶爾出現未加引號的鍵，修復後再試一次
		if err := common.ParseJSON(common.QuoteJSONKeys(payload), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse mentions: %w", err)
		}
	}
	if len(parsed.Mentions) == 0 {
		return nil, fmt.Errorf("LLM response contains no mentions")
	}

	mentions := make([]common.ParsedMention, 0, len(parsed.Mentions))
	for _, m := range parsed.Mentions {
		name := strings.TrimSpace(strings.ToLower(m.FoodName))
		if name == "" {
			continue
		}
		confidence := m.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.5
		}
		mentions = append(mentions, common.ParsedMention{
			RawText:       name,
			FoodName:      name,
			Quantity:      m.Quantity,
			Unit:          strings.TrimSpace(strings.ToLower(m.Unit)),
			CookingMethod: strings.TrimSpace(strings.ToLower(m.CookingMethod)),
			Confidence:    confidence,
		})
	}
	if len(mentions) == 0 {
		return nil, fmt.Errorf("LLM response contains no usable mentions")
	}
	return mentions, nil
}
