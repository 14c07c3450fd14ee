package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int              `json:"port"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Database         DatabaseConfig   `json:"database"`
	AI               AIConfig         `json:"ai"`
	RAG              RAGConfig        `json:"rag"`
	FileStore        FileStoreConfig  `json:"file_store"`
	Jobs             JobsConfig       `json:"jobs"`
	CORSAllowlist    []string         `json:"cors_allowlist"`
	QueryRateLimitMs int64            `json:"query_rate_limit_ms"`
	MaxUploadSize    int64            `json:"max_upload_size"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider       string           `json:"provider"`
	Data           interface{}      `json:"data"`
	Model          string           `json:"model"`
	EmbedProvider  string           `json:"embed_provider"`
	EmbedData      interface{}      `json:"embed_data"`
	EmbedModel     string           `json:"embed_model"`
	EmbedDim       int              `json:"embed_dim"`
	MaxInputChars  int              `json:"max_input_chars"`
	TimeoutSeconds int              `json:"timeout_seconds"`
	EmbedCache     EmbedCacheConfig `json:"embed_cache"`
}

type EmbedCacheConfig struct {
	LruSize       int  `json:"lru_size"`
	LruTTLMinutes int  `json:"lru_ttl_minutes"`
	UseDB         bool `json:"use_db"`
}

type RAGConfig struct {
	ChunkSize       int     `json:"chunk_size"`
	ChunkOverlap    int     `json:"chunk_overlap"`
	DefaultTopK     int     `json:"default_top_k"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float32 `json:"temperature"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	CacheCleanupCron string `json:"cache_cleanup_cron"`
	CacheTTLDays     int    `json:"cache_ttl_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.EmbedProvider == "" {
		return nil, fmt.Errorf("ai.embed_provider is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.EmbedDim == 0 {
		cfg.AI.EmbedDim = 384
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 8000
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 500
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 50
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.chunk_overlap must be smaller than rag.chunk_size")
	}
	if cfg.RAG.DefaultTopK == 0 {
		cfg.RAG.DefaultTopK = 5
	}
	if cfg.RAG.DefaultTopK < 1 || cfg.RAG.DefaultTopK > 20 {
		return nil, fmt.Errorf("rag.default_top_k must be in [1, 20]")
	}
	if cfg.RAG.MaxOutputTokens == 0 {
		cfg.RAG.MaxOutputTokens = 1024
	}
	if cfg.RAG.Temperature == 0 {
		cfg.RAG.Temperature = 0.2
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 20 * 1024 * 1024
	}
	if cfg.Jobs.CacheTTLDays == 0 {
		cfg.Jobs.CacheTTLDays = 30
	}
	return &cfg, nil
}
