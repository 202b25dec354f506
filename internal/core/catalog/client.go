package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 遠端食品目錄服務的 HTTP 客戶端
type Client struct {
	config *config.CatalogConfig
	client *resty.Client
}

// NewClient 創建目錄服務客戶端
func NewClient(cfg *config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &Client{
		config: cfg,
		client: client,
	}
}

// Search 呼叫遠端目錄服務的搜尋端點
// 逾時與網路錯誤一律包裝為 CatalogUnavailable，由呼叫端視為空結果
func (c *Client) Search(ctx context.Context, term string) ([]common.CatalogFood, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", term).
		Get("/foods/search")

	if err != nil {
		common.LogCatalogCall(term, 0, time.Since(start), err)
		return nil, common.NewError(common.ErrCodeCatalogUnavailable,
			"食品目錄服務暫時不可用", http.StatusServiceUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("catalog service returned status %d", resp.StatusCode())
		common.LogCatalogCall(term, 0, time.Since(start), err)
		return nil, common.NewError(common.ErrCodeCatalogUnavailable,
			"食品目錄服務暫時不可用", http.StatusServiceUnavailable, err)
	}

	// 解析回應
	var result struct {
		Foods []common.CatalogFood `json:"foods"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		common.LogCatalogCall(term, 0, time.Since(start), err)
		return nil, common.NewError(common.ErrCodeCatalogUnavailable,
			"食品目錄服務回應格式錯誤", http.StatusServiceUnavailable, err)
	}

	common.LogCatalogCall(term, len(result.Foods), time.Since(start), nil)
	return result.Foods, nil
}
