package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	MaxWorkers  int64    `yaml:"max_workers"`
}

type StorageConfig struct {
	CacheDir  string `yaml:"cache_dir"`
	VectorDir string `yaml:"vector_dir"`
}

type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

// LLMConfig selects and configures one model backend. Provider is either
// "openai" (any OpenAI-compatible endpoint, e.g. OpenRouter) or "ollama".
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	TopK             int     `yaml:"top_k"`
	AnswerTemp       float64 `yaml:"answer_temperature"`
	AnswerMaxTokens  int     `yaml:"answer_max_tokens"`
	ReportTemp       float64 `yaml:"analysis_temperature"`
	ReportMaxTokens  int     `yaml:"analysis_max_tokens"`
	MaxAnalysisChars int     `yaml:"max_analysis_chars"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	EmbedLLM LLMConfig      `yaml:"embedding_llm"`
	RAG      RAGConfig      `yaml:"rag"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.MaxWorkers <= 0 {
		c.Server.MaxWorkers = 4
	}
	if c.Storage.CacheDir == "" {
		c.Storage.CacheDir = "./tmp/cache"
	}
	if c.Storage.VectorDir == "" {
		c.Storage.VectorDir = "./tmp/data"
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.AnswerTemp == 0 {
		c.RAG.AnswerTemp = 0.3
	}
	if c.RAG.AnswerMaxTokens == 0 {
		c.RAG.AnswerMaxTokens = 2048
	}
	if c.RAG.ReportTemp == 0 {
		c.RAG.ReportTemp = 0.2
	}
	if c.RAG.ReportMaxTokens == 0 {
		c.RAG.ReportMaxTokens = 4096
	}
	if c.RAG.MaxAnalysisChars == 0 {
		c.RAG.MaxAnalysisChars = 10000
	}
}
