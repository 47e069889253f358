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
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Triage   TriageConfig
	Ranking  RankingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini  string
	RankCaseTopic string // Async ranking topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	ProviderAType     string // "ollama" or "gemini"
	ProviderAModel    string
	ProviderBType     string
	ProviderBModel    string
	JudgeType         string
	JudgeModel        string
}

type TriageConfig struct {
	ProviderTimeoutSecs int
	JudgeTimeoutSecs    int
	StateTTLHours       int
}

type RankingConfig struct {
	DefaultPreset   string
	DefaultRadiusKm float64
	DecayKm         float64
	MaxEquityDelta  float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "LawMatch"),
		},
		Keys: APIKeys{
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			RankCaseTopic: getEnv("RANK_CASE_TOPIC_NAME", "RANK_CASE"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			ProviderAType:     getEnv("PROVIDER_A_TYPE", "gemini"),
			ProviderAModel:    getEnv("PROVIDER_A_MODEL", "gemini-2.0-flash"),
			ProviderBType:     getEnv("PROVIDER_B_TYPE", "ollama"),
			ProviderBModel:    getEnv("PROVIDER_B_MODEL", "llama3"),
			JudgeType:         getEnv("JUDGE_TYPE", "gemini"),
			JudgeModel:        getEnv("JUDGE_MODEL", "gemini-2.0-flash"),
		},
		Triage: TriageConfig{
			ProviderTimeoutSecs: getEnvAsInt("PROVIDER_TIMEOUT_SECS", 30),
			JudgeTimeoutSecs:    getEnvAsInt("JUDGE_TIMEOUT_SECS", 45),
			StateTTLHours:       getEnvAsInt("STATE_TTL_HOURS", 24),
		},
		Ranking: RankingConfig{
			DefaultPreset:   getEnv("RANKING_DEFAULT_PRESET", "balanced"),
			DefaultRadiusKm: getEnvAsFloat("RANKING_DEFAULT_RADIUS_KM", 50),
			DecayKm:         getEnvAsFloat("RANKING_DECAY_KM", 25),
			MaxEquityDelta:  getEnvAsFloat("RANKING_MAX_EQUITY_DELTA", 0.05),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
