package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Storage   StorageConfig
	Extract   ExtractConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// StorageConfig holds object-storage configuration
type StorageConfig struct {
	Bucket string
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
}

// EmbeddingConfig holds embedding-service configuration
type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// LLMConfig holds reasoning-service configuration
type LLMConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	FactPageLimit int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			Bucket: getEnv("STORAGE_BUCKET", "private-user-docs"),
		},
		Extract: ExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:      getEnv("TESSERACT_LANG", "eng"),
			DPI:       getEnvAsInt("EXTRACT_DPI", 200),
		},
		Embedding: EmbeddingConfig{
			BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			Timeout:   getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			FactPageLimit: getEnvAsInt("FACT_PAGE_LIMIT", 3),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Embedding.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Storage.Bucket == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_BUCKET is required", ErrInvalidInput)
	}
	if c.Embedding.Dimension <= 0 {
		return NewAppError("CONFIG_ERROR", "EMBEDDING_DIMENSION must be positive", ErrInvalidInput)
	}
	if c.LLM.FactPageLimit <= 0 {
		return NewAppError("CONFIG_ERROR", "FACT_PAGE_LIMIT must be positive", ErrInvalidInput)
	}
	return nil
}
