package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"port"`
	UploadDir    string `mapstructure:"upload_dir"`
	MongoURI     string `mapstructure:"MONGODB_URI"`
	MongoDB      string `mapstructure:"mongo_database"`
	UseMongo     bool   `mapstructure:"use_mongo"`
	UseWeaviate  bool   `mapstructure:"use_weaviate"`
	AIProvider   string `mapstructure:"ai_provider"` // "openai" or "gemini"
	AIEndpoint   string `mapstructure:"ai_endpoint"`
	Model        string `mapstructure:"model"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Weaviate  WeaviateConfig  `mapstructure:"weaviate"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

type EmbeddingConfig struct {
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

type PipelineConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size"`
	ChunkOverlap      int           `mapstructure:"chunk_overlap"`
	TopK              int           `mapstructure:"top_k"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// A missing config file is fine: env vars and defaults cover local mode.
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8000"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.MongoDB == "" {
		c.MongoDB = "docquery"
	}
	if c.AIProvider == "" {
		c.AIProvider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = 384
	}
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 1000
	}
	if c.Pipeline.ChunkOverlap == 0 {
		c.Pipeline.ChunkOverlap = 200
	}
	if c.Pipeline.TopK == 0 {
		c.Pipeline.TopK = 4
	}
	if c.Pipeline.GenerationTimeout == 0 {
		c.Pipeline.GenerationTimeout = 60 * time.Second
	}
}
