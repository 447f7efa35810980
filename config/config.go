package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSupportEmail is the address support requests are addressed to
const DefaultSupportEmail = "chizhang2048@gmail.com"

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	ServiceName string
	Environment string
	// Support form
	SupportEmailTo       string
	HandoffDelay         time.Duration // Delay between mailto dispatch and the success message
	SuccessMessageTTL    time.Duration // How long a success message stays in the slot
	StrictSubjects       bool          // Reject subject codes outside the known set
	MaxMailtoLinkLength  int           // 0 disables the length check
	AllowedOrigins       []string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitSupportThreshold int
	RateLimitGlobalThreshold  int
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("SERVICE_NAME", "aiki-site-backend"),
		Environment: getEnv("APP_ENV", "development"),
		// Support form
		SupportEmailTo:      strings.TrimSpace(getEnv("SUPPORT_EMAIL_TO", DefaultSupportEmail)),
		HandoffDelay:        getEnvDuration("SUPPORT_HANDOFF_DELAY", 500*time.Millisecond),
		SuccessMessageTTL:   getEnvDuration("SUPPORT_SUCCESS_MESSAGE_TTL", 5*time.Second),
		StrictSubjects:      getEnvBool("SUPPORT_STRICT_SUBJECTS", false),
		MaxMailtoLinkLength: getEnvInt("SUPPORT_MAX_LINK_LENGTH", 8000),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS", []string{"https://aiki.app", "https://www.aiki.app"}),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitSupportThreshold: getEnvInt("RATE_LIMIT_SUPPORT_THRESHOLD", 5),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	if cfg.SupportEmailTo == "" {
		log.Println("WARNING: SUPPORT_EMAIL_TO is empty, falling back to default address.")
		cfg.SupportEmailTo = DefaultSupportEmail
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("500ms", "5s")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
