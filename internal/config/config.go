package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Queue     QueueConfig
	Retrieval RetrievalConfig
	Models    ModelsConfig
	Ai        AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TracingEnabled     bool
	OTLPEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type QueueConfig struct {
	AskQueue      string
	ResponseQueue string
	Workers       int
	GracePeriod   time.Duration
}

type RetrievalConfig struct {
	SourceTimeout  time.Duration
	TopK           int
	ScoreThreshold float64
	ContextBudget  int // characters of grounding context
}

type ModelsConfig struct {
	ConfigPath    string
	InvokeTimeout time.Duration
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "openai"
	OllamaBaseURL     string
	EmbeddingModel    string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8081"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "middleware.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TracingEnabled:     getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Queue: QueueConfig{
			AskQueue:      getEnv("ASK_QUEUE_NAME", "hrask.ask.queue"),
			ResponseQueue: getEnv("RESPONSE_QUEUE_NAME", "hrask.response.queue"),
			Workers:       getEnvAsInt("QUEUE_WORKERS", 4),
			GracePeriod:   getEnvAsDuration("SHUTDOWN_GRACE_PERIOD", 15*time.Second),
		},
		Retrieval: RetrievalConfig{
			SourceTimeout:  getEnvAsDuration("RETRIEVAL_SOURCE_TIMEOUT", 5*time.Second),
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 5),
			ScoreThreshold: getEnvAsFloat("RETRIEVAL_SCORE_THRESHOLD", 0.35),
			ContextBudget:  getEnvAsInt("CONTEXT_CHAR_BUDGET", 6000),
		},
		Models: ModelsConfig{
			ConfigPath:    getEnv("MODELS_CONFIG_PATH", "models.yml"),
			InvokeTimeout: getEnvAsDuration("MODEL_INVOKE_TIMEOUT", 60*time.Second),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
