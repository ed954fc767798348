package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the grievance bot and dashboard
type Config struct {
	// Telegram configuration
	TelegramToken string
	PollTimeout   int // seconds the getUpdates long poll holds

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// Issue catalog configuration
	IssueConfigPath string

	// Rate limiting configuration
	RedisAddr     string
	RedisPassword string
	DailyLimit    int // grievances per user per 24h, 0 disables

	// Department notification configuration
	AMQPURL          string
	NotifyExchange   string
	NotifyRoutingKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		PollTimeout:   getIntEnv("TELEGRAM_POLL_TIMEOUT", 60),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		IssueConfigPath: getEnv("ISSUE_CONFIG_PATH", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DailyLimit:    getIntEnv("DAILY_GRIEVANCE_LIMIT", 5),

		AMQPURL:          getEnv("AMQP_URL", ""),
		NotifyExchange:   getEnv("NOTIFY_EXCHANGE", "grievance_notifications"),
		NotifyRoutingKey: getEnv("NOTIFY_ROUTING_KEY", "department"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
