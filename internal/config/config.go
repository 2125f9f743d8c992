package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`        // Application name
	Version     string `yaml:"version"`     // Application version
	Environment string `yaml:"environment"` // Runtime environment (e.g., "development", "production")
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // Log level (e.g., "info", "debug", "warn", "error")
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Address string `yaml:"address"` // Listen address (e.g., ":8080")
}

// GeminiConfig holds the settings for a Gemini model.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API key
	Model  string `yaml:"model"`  // Gemini model name
}

// OpenAIConfig holds the settings for OpenAI models.
type OpenAIConfig struct {
	APIKey      string `yaml:"apiKey"`      // OpenAI API key
	Model       string `yaml:"model"`       // Chat model used for text generation and summaries
	VisionModel string `yaml:"visionModel"` // Model used for image description; falls back to Model when empty
}

// OllamaConfig holds the settings for a local Ollama instance.
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // Ollama base URL (defaults to http://localhost:11434)
	Model   string `yaml:"model"`   // Model name (e.g., "llama3")
}

// LLMConfig selects and configures the generative model provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // "gemini", "openai" or "ollama"
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// EmbeddingConfig selects and configures the embedding model provider.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // "gemini" or "openai"
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// SummarizerConfig bounds the summarization concurrency per content kind.
// Image description calls are more expensive and rate limited harder, so
// they get a lower cap than plain text and table summaries.
type SummarizerConfig struct {
	TextConcurrency  int `yaml:"textConcurrency"`  // Cap for text and table batches (default 5)
	ImageConcurrency int `yaml:"imageConcurrency"` // Cap for image batches (default 2)
}

// MilvusConfig holds the Milvus connection and collection settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus address (e.g., "localhost:19530")
	Collection string `yaml:"collection"` // Collection name for the RAG index
	Dim        int    `yaml:"dim"`        // Embedding dimension of the configured embedding model
}

// MinIOConfig holds the MinIO connection settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // MinIO endpoint
	AccessKey string `yaml:"accessKey"` // Access key
	SecretKey string `yaml:"secretKey"` // Secret key
	Bucket    string `yaml:"bucket"`    // Bucket for uploaded PDFs and extracted images
	Secure    bool   `yaml:"secure"`    // Whether to use HTTPS
}

// MySQLConfig holds the MySQL connection settings for the document registry.
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL address
	Username        string `yaml:"username"`        // Username
	Password        string `yaml:"password"`        // Password
	Database        string `yaml:"database"`        // Database name
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // Max open connections
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // Max idle connections
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // Connection max lifetime in seconds
}

// DatabaseConfigs groups all backing store configurations.
type DatabaseConfigs struct {
	Milvus MilvusConfig `yaml:"milvus"`
	MinIO  MinIOConfig  `yaml:"minio"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Databases  DatabaseConfigs  `yaml:"databases"`
}

// LoadConfig reads and parses the YAML configuration file at the given path.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
