package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Matcher   MatcherConfig   `mapstructure:"matcher"`
	Scaler    ScalerConfig    `mapstructure:"scaler"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Entry     EntryConfig     `mapstructure:"entry"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	DedupWindow time.Duration `mapstructure:"dedup_window"`
	LogLevel    string        `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CatalogConfig 食品目錄服務設定
// BaseURL 為空時使用內建的記憶體目錄
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatcherConfig 比對器設定
// 這些閾值為啟發式常數，集中於設定檔以便領域專家調整
type MatcherConfig struct {
	DisambiguationGap        float64 `mapstructure:"disambiguation_gap"`         // 前兩名信心度差距低於此值時需要消歧
	FuzzyMinSimilarity       float64 `mapstructure:"fuzzy_min_similarity"`       // 模糊比對最低相似度
	FuzzyMaxResults          int     `mapstructure:"fuzzy_max_results"`          // 模糊比對候選上限
	SuggestionCount          int     `mapstructure:"suggestion_count"`           // 消歧建議數量
	SynonymConfidence        float64 `mapstructure:"synonym_confidence"`         // 同義詞完全命中信心度
	SynonymPartialConfidence float64 `mapstructure:"synonym_partial_confidence"` // 同義詞子字串命中信心度
	PartialDefaultConfidence float64 `mapstructure:"partial_default_confidence"` // 非包含式部分重疊信心度
}

// ScalerConfig 營養換算設定
// 每單位克數為啟發式預設值，集中於設定檔以便領域專家調整
type ScalerConfig struct {
	UnitGrams              map[string]float64 `mapstructure:"unit_grams"`                // 通用單位 → 克數
	FallbackCaloriesPer100 float64            `mapstructure:"fallback_calories_per_100"` // 無比對時每 100 單位的估計熱量
}

// PipelineConfig 管線設定
type PipelineConfig struct {
	MatchWorkers int `mapstructure:"match_workers"` // 同時比對的提及數上限
}

// EntryConfig 飲食記錄儲存設定
type EntryConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// LLMConfig LLM 強化解析設定（可選路徑，失敗時退回規則解析）
type LLMConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 目錄查詢快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時忽略）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("catalog.base_url", "CATALOG_BASE_URL")
	viper.BindEnv("catalog.api_key", "CATALOG_API_KEY")
	viper.BindEnv("entry.redis_addr", "REDIS_ADDR")
	viper.BindEnv("entry.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("llm.enabled", "LLM_ENABLED")
	viper.BindEnv("llm.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("llm.model", "OPENROUTER_MODEL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "meal-parser")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 目錄服務設定
	viper.SetDefault("catalog.base_url", "")
	viper.SetDefault("catalog.timeout", "5s")

	// 比對器閾值（啟發式常數，待領域專家檢視）
	viper.SetDefault("matcher.disambiguation_gap", 0.2)
	viper.SetDefault("matcher.fuzzy_min_similarity", 0.5)
	viper.SetDefault("matcher.fuzzy_max_results", 5)
	viper.SetDefault("matcher.suggestion_count", 3)
	viper.SetDefault("matcher.synonym_confidence", 0.8)
	viper.SetDefault("matcher.synonym_partial_confidence", 0.7)
	viper.SetDefault("matcher.partial_default_confidence", 0.5)

	// 換算器單位克數（啟發式常數，待領域專家檢視）
	viper.SetDefault("scaler.unit_grams", map[string]float64{
		"piece":   50,
		"slice":   25,
		"cup":     240,
		"tbsp":    15,
		"tsp":     5,
		"serving": 100,
		"bowl":    350,
		"glass":   250,
		"can":     330,
		"bottle":  500,
	})
	viper.SetDefault("scaler.fallback_calories_per_100", 100)

	// 管線設定
	viper.SetDefault("pipeline.match_workers", 4)

	// 儲存設定：redis_addr 留空時使用記憶體儲存
	viper.SetDefault("entry.redis_addr", "")
	viper.SetDefault("entry.redis_db", 0)

	// LLM 設定
	viper.SetDefault("llm.enabled", false)
	viper.SetDefault("llm.model", "qwen/qwen-2.5-72b-instruct:free")
	viper.SetDefault("llm.max_tokens", 1000)
	viper.SetDefault("llm.timeout", "30s")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重設定
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證比對器設定
	if config.Matcher.DisambiguationGap < 0 || config.Matcher.DisambiguationGap > 1 {
		return fmt.Errorf("invalid matcher disambiguation gap")
	}
	if config.Matcher.FuzzyMinSimilarity < 0 || config.Matcher.FuzzyMinSimilarity > 1 {
		return fmt.Errorf("invalid matcher fuzzy min similarity")
	}
	if config.Matcher.FuzzyMaxResults <= 0 {
		return fmt.Errorf("invalid matcher fuzzy max results")
	}
	if config.Matcher.SuggestionCount <= 0 {
		return fmt.Errorf("invalid matcher suggestion count")
	}

	// 驗證換算器設定
	for unit, grams := range config.Scaler.UnitGrams {
		if grams <= 0 {
			return fmt.Errorf("invalid scaler unit grams for %q", unit)
		}
	}
	if config.Scaler.FallbackCaloriesPer100 <= 0 {
		return fmt.Errorf("invalid scaler fallback calories")
	}

	// 驗證管線設定
	if config.Pipeline.MatchWorkers <= 0 {
		return fmt.Errorf("invalid pipeline match workers")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	return nil
}
