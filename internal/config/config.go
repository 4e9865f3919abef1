package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Callback CallbackConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EmbedProvTopic     string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	PlannerModel      string
	SynthModel        string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OllamaBaseURL     string
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaEmbedModel  string
	GoogleGeminiKey   string
}

type CallbackConfig struct {
	HeaderName  string
	MaxAttempts int
	RetryBaseMs int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EmbedProvTopic:     getEnv("EMBED_PROV_TOPIC_NAME", "EMBED_PROV_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			PlannerModel:      getEnv("PLANNER_MODEL", "gpt-4o-mini"),
			SynthModel:        getEnv("SYNTH_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Callback: CallbackConfig{
			HeaderName:  getEnv("CALLBACK_HEADER", "X-AI-Callback-Key"),
			MaxAttempts: getEnvAsInt("CALLBACK_MAX_ATTEMPTS", 3),
			RetryBaseMs: getEnvAsInt("CALLBACK_RETRY_BASE_MS", 500),
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
