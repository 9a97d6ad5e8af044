package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// Language backend
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string
	ChatTimeout    time.Duration
	ChatDebugTrace bool
	PersonaFile    string

	// AWS (Bedrock provider only)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Shipping carrier
	CarrierBaseURL string
	CarrierAPIKey  string
	CarrierTimeout time.Duration

	// Order status lookup (read-only)
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	DefaultOrderStatus string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini"))),
		GeminiAPIKey:   firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-1.5-flash-latest"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		ChatTimeout:    getEnvAsDuration("CHAT_TIMEOUT", 30*time.Second),
		ChatDebugTrace: getEnvAsBool("CHAT_DEBUG_TRACE", false),
		PersonaFile:    getEnv("PERSONA_FILE", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CarrierBaseURL: getEnv("CARRIER_BASE_URL", "https://api.skydropx.com/v1"),
		CarrierAPIKey:  firstNonEmpty(os.Getenv("CARRIER_API_KEY"), os.Getenv("SKYDROPX_API_KEY")),
		CarrierTimeout: getEnvAsDuration("CARRIER_TIMEOUT", 15*time.Second),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		DefaultOrderStatus: getEnv("DEFAULT_ORDER_STATUS", "En producción"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
