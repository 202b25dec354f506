package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-parser/internal/api"
	"meal-parser/internal/core/catalog"
	"meal-parser/internal/core/entry"
	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_base_url", cfg.Catalog.BaseURL),
		zap.String("redis_addr", cfg.Entry.RedisAddr),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
	)

	// 初始化食品目錄：未設定遠端目錄時使用內建目錄
	var cat catalog.Service
	if cfg.Catalog.BaseURL != "" {
		cat = catalog.NewClient(&cfg.Catalog)
	} else {
		common.LogInfo("未設定遠端目錄，使用內建食物目錄")
		cat = catalog.NewSeedCatalog()
	}
	cat = catalog.NewCachedCatalog(cat, &cfg.Cache)
	defer func() {
		if closer, ok := cat.(interface{ Close() error }); ok {
			closer.Close()
		}
	}()

	// 初始化飲食記錄儲存：未設定 Redis 時使用記憶體儲存
	var store entry.Store
	if cfg.Entry.RedisAddr != "" {
		redisStore, err := entry.NewRedisStore(&cfg.Entry)
		if err != nil {
			common.LogFatal("Failed to initialize entry store", zap.Error(err))
		}
		store = redisStore
	} else {
		common.LogInfo("未設定 Redis，使用記憶體飲食記錄儲存")
		store = entry.NewMemoryStore()
	}
	defer store.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, cat, store)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
