package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	AppBaseURL     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	LogMode        string

	// Media and audio
	MediaRoot    string
	MediaURL     string
	AudioStore   string
	GCSBucket    string
	GCSCredsJSON string
	GCSPublicURL string
	TTSLanguage  string
	TTSMaxChars  int
	TTSTimeout   time.Duration

	// AI gateway
	AIProvider      string
	AIModel         string
	AIBaseURL       string
	AIAPIKey        string
	AITimeout       time.Duration
	AIMaxTokens     int
	AITemperature   float64
	AIRetryAttempts int
	ClassesSansIA   []string

	// Auth and guests
	JWTSecret           string
	TokenTTL            time.Duration
	GuestTTL            time.Duration
	SessionCookieSecure bool

	// Tutor chat rate limiting
	RedisURL       string
	ChatRateLimit  int
	ChatRateWindow time.Duration

	// Email
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("AI_PROVIDER", "groq"))

	return &Config{
		ServerPort:     getEnv("PORT", "8000"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8000"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./faso_tuteur.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", ""),
		LogMode:        getEnv("LOG_MODE", "dev"),

		MediaRoot:    getEnv("MEDIA_ROOT", "./media"),
		MediaURL:     ensureTrailingSlash(getEnv("MEDIA_URL", "/media/")),
		AudioStore:   strings.ToLower(getEnv("AUDIO_STORE", "local")),
		GCSBucket:    getEnv("GCS_BUCKET", ""),
		GCSCredsJSON: getEnv("GCS_CREDENTIALS_JSON", ""),
		GCSPublicURL: getEnv("GCS_PUBLIC_URL", ""),
		TTSLanguage:  getEnv("TTS_LANG", "fr"),
		TTSMaxChars:  getEnvInt("TTS_MAX_CHARS", 800),
		TTSTimeout:   getEnvDuration("TTS_TIMEOUT", 20*time.Second),

		AIProvider:      provider,
		AIModel:         getEnv("AI_MODEL", defaultModelFor(provider)),
		AIBaseURL:       baseURLFor(provider),
		AIAPIKey:        apiKeyFor(provider),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 60*time.Second),
		AIMaxTokens:     getEnvInt("AI_MAX_TOKENS", 2000),
		AITemperature:   getEnvFloat("AI_TEMPERATURE", 0.7),
		AIRetryAttempts: getEnvInt("AI_RETRY_ATTEMPTS", 2),
		ClassesSansIA:   splitList(getEnv("CLASSES_SANS_IA", "cp1,cp2")),

		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		GuestTTL:            getEnvDuration("GUEST_TTL", 7*24*time.Hour),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),

		RedisURL:       getEnv("REDIS_URL", ""),
		ChatRateLimit:  getEnvInt("CHAT_RATE_LIMIT", 20),
		ChatRateWindow: getEnvDuration("CHAT_RATE_WINDOW", time.Minute),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "FASO Tuteur"),
	}
}

// apiKeyFor picks the credential matching the selected AI provider.
func apiKeyFor(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("GROQ_API_KEY")
	}
}

// defaultModelFor returns the model used when AI_MODEL is unset.
func defaultModelFor(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-haiku"
	case "gemini":
		return "gemini-flash"
	default:
		return getEnv("GROQ_MODEL", "llama-3.1-8b-instant")
	}
}

// baseURLFor returns the OpenAI-compatible endpoint for providers that need one.
func baseURLFor(provider string) string {
	switch provider {
	case "groq", "":
		return getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	case "openai":
		return getEnv("OPENAI_BASE_URL", "")
	default:
		return ""
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
