package api

import (
	"context"
	"net/http"
	"time"

	"meal-parser/internal/api/handlers/health"
	mealHandler "meal-parser/internal/api/handlers/meal"
	"meal-parser/internal/api/middleware"
	"meal-parser/internal/core/catalog"
	"meal-parser/internal/core/entry"
	"meal-parser/internal/core/llm"
	"meal-parser/internal/core/matcher"
	mealService "meal-parser/internal/core/meal"
	"meal-parser/internal/core/parser"
	"meal-parser/internal/core/scaler"
	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 請求超時
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)，語句解析不需要大請求體
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cat catalog.Service, store entry.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
		zap.Int("match_workers", cfg.Pipeline.MatchWorkers),
	)

	// 初始化管線服務
	var enhancer *llm.Enhancer
	if cfg.LLM.Enabled {
		enhancer = llm.NewEnhancer(&cfg.LLM)
	}

	svc := mealService.NewService(
		parser.NewParser(nil),
		matcher.NewMatcher(cat, nil, &cfg.Matcher),
		scaler.NewScaler(&cfg.Scaler, nil),
		enhancer,
		store,
		cfg.Pipeline.MatchWorkers,
	)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		if provider, ok := cat.(health.CacheStatsProvider); ok {
			c.Set("catalog_cache", provider)
		}

		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
			c.Abort()
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := mealHandler.NewHandler(svc, cat)

		mealGroup := api.Group("/meal")
		mealGroup.Use(middleware.Deduplication(cfg))
		{
			// 解析餐點描述，不寫入記錄
			mealGroup.POST("/parse", handler.HandleParse)

			// 解析並存入飲食記錄
			mealGroup.POST("/log", handler.HandleLog)

			// 查詢某日的記錄與營養加總
			mealGroup.GET("/log", handler.HandleDaily)
		}

		catalogGroup := api.Group("/catalog")
		{
			catalogGroup.GET("/search", handler.HandleCatalogSearch)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
