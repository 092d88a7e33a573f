package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// OpenAI / Azure OpenAI
	OpenAIAPIKey         string
	OpenAIAPIBase        string // Azure endpoint; empty means standard OpenAI
	OpenAIAPIVersion     string
	OpenAIDeploymentName string
	OpenAIBaseURL        string // standard OpenAI base, overridable for tests

	// Agent
	AgentModel             string
	AgentTemperature       float64
	MaxConversationHistory int
	AgentAutoProvision     bool
	AITimeout              time.Duration

	// Vision / speech
	VisionModel  string
	WhisperModel string
	TTSModel     string
	TTSVoice     string

	// Server
	Port        string
	CORSOrigins string
	MaxFileSize int

	// Seeding
	SeedSampleData bool
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "visioneers_marketplace"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "30m")),

		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIBase:        getEnv("OPENAI_API_BASE", ""),
		OpenAIAPIVersion:     getEnv("OPENAI_API_VERSION", "2024-02-15-preview"),
		OpenAIDeploymentName: getEnv("OPENAI_DEPLOYMENT_NAME", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		AgentModel:             getEnv("AGENT_MODEL", "gpt-4o"),
		AgentTemperature:       parseFloat(getEnv("AGENT_TEMPERATURE", "0.7"), 0.7),
		MaxConversationHistory: parseInt(getEnv("MAX_CONVERSATION_HISTORY", "10"), 10),
		AgentAutoProvision:     parseBool(getEnv("AGENT_AUTO_PROVISION", "true"), true),
		AITimeout:              parseDuration(getEnv("AI_TIMEOUT", "60s")),

		VisionModel:  getEnv("VISION_MODEL", "gpt-4o"),
		WhisperModel: getEnv("WHISPER_MODEL", "whisper-1"),
		TTSModel:     getEnv("TTS_MODEL", "tts-1"),
		TTSVoice:     getEnv("TTS_VOICE", "alloy"),

		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		MaxFileSize: parseInt(getEnv("MAX_FILE_SIZE", "10485760"), 10485760),

		SeedSampleData: parseBool(getEnv("SEED_SAMPLE_DATA", "true"), true),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AzureEnabled reports whether chat completions should go through the Azure
// deployment endpoint instead of standard OpenAI.
func (c *Config) AzureEnabled() bool {
	return c.OpenAIAPIBase != "" && c.OpenAIDeploymentName != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
