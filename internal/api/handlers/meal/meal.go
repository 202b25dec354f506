package meal

import (
	"errors"
	"net/http"
	"time"

	"meal-parser/internal/core/catalog"
	mealService "meal-parser/internal/core/meal"
	"meal-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseRequest 餐點解析請求
type ParseRequest struct {
	Text string `json:"text" binding:"required"` // 餐點描述語句
}

// LogRequest 飲食記錄請求
type LogRequest struct {
	Text   string `json:"text" binding:"required"`
	UserID string `json:"user_id,omitempty"` // 省略時使用匿名使用者
}

// Handler 餐點處理程序
type Handler struct {
	mealService *mealService.Service
	catalog     catalog.Service
}

// NewHandler 創建餐點處理程序
func NewHandler(svc *mealService.Service, cat catalog.Service) *Handler {
	return &Handler{
		mealService: svc,
		catalog:     cat,
	}
}

// HandleParse 解析餐點描述，不寫入記錄
func (h *Handler) HandleParse(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	common.LogInfo("開始處理餐點解析請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	result, err := h.mealService.Parse(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleLog 解析餐點描述並存入飲食記錄
func (h *Handler) HandleLog(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	result, err := h.mealService.Log(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"result":  result,
	})
}

// HandleDaily 查詢使用者某日的記錄與營養加總
// date 省略時預設今天，格式 2006-01-02
func (h *Handler) HandleDaily(c *gin.Context) {
	requestID := ensureRequestID(c)

	userID := c.Query("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	items, totals, err := h.mealService.Daily(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"totals":  totals,
		"items":   items,
	})
}

// HandleCatalogSearch 目錄搜尋，供前端自動完成與消歧選單使用
func (h *Handler) HandleCatalogSearch(c *gin.Context) {
	requestID := ensureRequestID(c)

	term := c.Query("q")
	foods, err := h.catalog.Search(c.Request.Context(), term)
	if err != nil {
		common.LogError("目錄搜尋失敗",
			zap.String("term", term),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog unavailable",
			"code":  common.ErrCodeCatalogUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": term,
		"count": len(foods),
		"foods": foods,
	})
}

// ensureRequestID 確保請求帶有追蹤 ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondError 將服務錯誤對應到 HTTP 回應
func respondError(c *gin.Context, requestID string, err error) {
	var customErr *common.CustomError
	if errors.As(err, &customErr) {
		common.LogError("請求處理失敗",
			zap.String("code", customErr.Code),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(customErr.Status, gin.H{
			"error": customErr.Message,
			"code":  customErr.Code,
		})
		return
	}
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
		return
	}

	common.LogError("未預期的錯誤",
		zap.String("request_id", requestID),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}
