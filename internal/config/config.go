package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	DataDir       string           `json:"data_dir"`
	LogConfig     logger.LogConfig `json:"log_config"`
	AI            AIConfig         `json:"ai"`
	RAG           RAGConfig        `json:"rag"`
	BookStore     BookStoreConfig  `json:"book_store"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type AIConfig struct {
	Provider       string                 `json:"provider"`
	ChatModel      string                 `json:"chat_model"`
	EmbedModel     string                 `json:"embed_model"`
	EmbedDimension int                    `json:"embed_dimension"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	Data           map[string]interface{} `json:"data"`
}

type RAGConfig struct {
	ChunkWords      int `json:"chunk_words"`
	OverlapWords    int `json:"overlap_words"`
	TopK            int `json:"top_k"`
	Overfetch       int `json:"overfetch"`
	MinChunkChars   int `json:"min_chunk_chars"`
	MaxSources      int `json:"max_sources"`
	CacheSize       int `json:"cache_size"`
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
}

type BookStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
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
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data_dir is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gemini-2.0-flash"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "text-embedding-004"
	}
	if cfg.AI.EmbedDimension == 0 {
		cfg.AI.EmbedDimension = 768
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.RAG.ChunkWords == 0 {
		cfg.RAG.ChunkWords = 500
	}
	if cfg.RAG.OverlapWords == 0 {
		cfg.RAG.OverlapWords = 50
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.Overfetch == 0 {
		cfg.RAG.Overfetch = 2
	}
	if cfg.RAG.MinChunkChars == 0 {
		cfg.RAG.MinChunkChars = 200
	}
	if cfg.RAG.MaxSources == 0 {
		cfg.RAG.MaxSources = 5
	}
	if cfg.RAG.CacheSize == 0 {
		cfg.RAG.CacheSize = 2048
	}
	if cfg.RAG.CacheTTLMinutes == 0 {
		cfg.RAG.CacheTTLMinutes = 120
	}
	if cfg.BookStore.Type == "" {
		cfg.BookStore.Type = "local"
		if cfg.BookStore.Data == nil {
			cfg.BookStore.Data = map[string]interface{}{}
		}
	}
	return &cfg, nil
}
