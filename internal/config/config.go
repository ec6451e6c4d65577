package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
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
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Anthropic (the API key itself is stored per profile)
	AnthropicAPIURL    string
	AnthropicModel     string
	AnthropicMaxTokens int
	AITimeout          time.Duration

	// Plans
	FreeGenerationLimit int
	PaymentLinkURL      string

	// Rate limiting
	RedisAddr           string
	RedisPassword       string
	GenerationRateLimit int

	// Object storage for uploaded résumés (optional)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Observability
	LogLevel         string
	LogRetentionDays int
	SentryDSN        string
	AppEnv           string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// A missing .env is fine; real deployments use the process environment.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "resumeai"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AnthropicAPIURL:    getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com/v1"),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		AnthropicMaxTokens: parseInt(getEnv("ANTHROPIC_MAX_TOKENS", "4096"), 4096),
		AITimeout:          parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		FreeGenerationLimit: parseInt(getEnv("FREE_GENERATION_LIMIT", "3"), 3),
		PaymentLinkURL:      getEnv("PAYMENT_LINK_URL", ""),

		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		GenerationRateLimit: parseInt(getEnv("GENERATION_RATE_LIMIT", "10"), 10),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "resumes"),
		MinioUseSSL:    parseBool(getEnv("MINIO_USE_SSL", "false")),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
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

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
