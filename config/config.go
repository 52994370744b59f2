package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	RAG       RAGConfig       `yaml:"rag"`
	Store     StoreConfig     `yaml:"store"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	BasePath    string `yaml:"base_path"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OllamaConfig struct {
	BaseURL            string `yaml:"base_url"`
	ChatModel          string `yaml:"chat_model"`
	EmbedModel         string `yaml:"embed_model"`
	EmbedBatchSize     int    `yaml:"embed_batch_size"`
	QATimeoutSecs      int    `yaml:"qa_timeout_secs"`
	SummaryTimeoutSecs int    `yaml:"summary_timeout_secs"`
	ExtractTimeoutSecs int    `yaml:"extract_timeout_secs"`
}

const unsetChunkOverlap = -1

type RAGConfig struct {
	ChunkSize       int `yaml:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap"`
	TopK            int `yaml:"top_k"`
	SummaryMaxChars int `yaml:"summary_max_chars"`
	TermsMaxChars   int `yaml:"terms_max_chars"`
	RedFlagMaxChars int `yaml:"red_flag_max_chars"`
}

type StoreConfig struct {
	MaxDocuments           int `yaml:"max_documents"` // 0 = unlimited
	TTLHours               int `yaml:"ttl_hours"`     // 0 = never expire
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Load reads the YAML file at path, applies defaults and LEASEWISE_* environment
// overrides. A missing file is not an error: defaults are used instead.
func Load(path string) (*Config, error) {
	// overlap 0 is a valid window, so absence is marked before decoding
	cfg := Config{RAG: RAGConfig{ChunkOverlap: unsetChunkOverlap}}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.ChatModel == "" {
		cfg.Ollama.ChatModel = "llama3"
	}
	if cfg.Ollama.EmbedModel == "" {
		cfg.Ollama.EmbedModel = "all-minilm"
	}
	if cfg.Ollama.EmbedBatchSize == 0 {
		cfg.Ollama.EmbedBatchSize = 32
	}
	if cfg.Ollama.QATimeoutSecs == 0 {
		cfg.Ollama.QATimeoutSecs = 120
	}
	if cfg.Ollama.SummaryTimeoutSecs == 0 {
		cfg.Ollama.SummaryTimeoutSecs = 240
	}
	if cfg.Ollama.ExtractTimeoutSecs == 0 {
		cfg.Ollama.ExtractTimeoutSecs = 120
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1200
	}
	if cfg.RAG.ChunkOverlap == unsetChunkOverlap {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.SummaryMaxChars == 0 {
		cfg.RAG.SummaryMaxChars = 8000
	}
	if cfg.RAG.TermsMaxChars == 0 {
		cfg.RAG.TermsMaxChars = 7000
	}
	if cfg.RAG.RedFlagMaxChars == 0 {
		cfg.RAG.RedFlagMaxChars = 7000
	}

	if cfg.Store.MaxDocuments == 0 {
		cfg.Store.MaxDocuments = 100
	}
	if cfg.Store.MaxDocuments < 0 {
		cfg.Store.MaxDocuments = 0
	}
	if cfg.Store.TTLHours == 0 {
		cfg.Store.TTLHours = 24
	}
	if cfg.Store.TTLHours < 0 {
		cfg.Store.TTLHours = 0
	}
	if cfg.Store.CleanupIntervalMinutes <= 0 {
		cfg.Store.CleanupIntervalMinutes = 10
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LEASEWISE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LEASEWISE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LEASEWISE_OLLAMA_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("LEASEWISE_CHAT_MODEL"); v != "" {
		cfg.Ollama.ChatModel = v
	}
	if v := os.Getenv("LEASEWISE_EMBED_MODEL"); v != "" {
		cfg.Ollama.EmbedModel = v
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, %d), got %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	if c.RAG.TopK < 0 {
		return fmt.Errorf("rag.top_k must not be negative, got %d", c.RAG.TopK)
	}
	return nil
}

func (o OllamaConfig) QATimeout() time.Duration {
	return time.Duration(o.QATimeoutSecs) * time.Second
}

func (o OllamaConfig) SummaryTimeout() time.Duration {
	return time.Duration(o.SummaryTimeoutSecs) * time.Second
}

func (o OllamaConfig) ExtractTimeout() time.Duration {
	return time.Duration(o.ExtractTimeoutSecs) * time.Second
}

func (s StoreConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

func (s StoreConfig) CleanupInterval() time.Duration {
	return time.Duration(s.CleanupIntervalMinutes) * time.Minute
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}
