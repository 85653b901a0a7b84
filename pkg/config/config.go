package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Groq      GroqConfig
	Embedding EmbeddingConfig
	Knowledge KnowledgeConfig
	RAG       RAGConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// GroqConfig configures the remote generation endpoint. Groq speaks the
// OpenAI chat-completions wire format, so BaseURL can point at any
// compatible service.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type KnowledgeConfig struct {
	ProductsPath string
	IndexPath    string
}

type RAGConfig struct {
	TopK int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables may be set directly

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	groqTemperature, _ := strconv.ParseFloat(getEnv("GROQ_TEMPERATURE", "0.5"), 32)
	groqMaxTokens, _ := strconv.Atoi(getEnv("GROQ_MAX_TOKENS", "1024"))
	groqTimeout, _ := strconv.Atoi(getEnv("GROQ_TIMEOUT", "60"))
	embeddingTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_TIMEOUT", "30"))
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "3"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "compass"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       getEnv("GROQ_MODEL", "llama3-8b-8192"),
			Temperature: float32(groqTemperature),
			MaxTokens:   groqMaxTokens,
			Timeout:     time.Duration(groqTimeout) * time.Second,
		},
		Embedding: EmbeddingConfig{
			APIKey:  getEnv("EMBEDDING_API_KEY", ""),
			BaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout: time.Duration(embeddingTimeout) * time.Second,
		},
		Knowledge: KnowledgeConfig{
			ProductsPath: getEnv("KNOWLEDGE_BASE_PATH", "products.txt"),
			IndexPath:    getEnv("INDEX_PATH", "compass_index.bin"),
		},
		RAG: RAGConfig{
			TopK: ragTopK,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
