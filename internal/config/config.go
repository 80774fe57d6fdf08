package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Auth
	JWTSecret   string
	AdminAPIKey string

	// Scheduler
	SchedulerEnabled     bool
	SchedulerInterval    time.Duration
	SchedulerRunTimeout  time.Duration
	SchedulerItemTimeout time.Duration
	SchedulerLoadTimeout time.Duration
	SchedulerWorkers     int

	// Redis (optional, enables the cross-instance run lock)
	RedisURL     string
	RedisLockTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", "development")

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  env,

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budgetbell"),
		DBPassword: getEnv("DB_PASSWORD", "budgetbell"),
		DBName:     getEnv("DB_NAME", "budgetbell"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "budgetbell.db"),

		JWTSecret:   getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		// The periodic trigger is on by default only in production.
		SchedulerEnabled:     getBool("SCHEDULER_ENABLED", env == "production"),
		SchedulerInterval:    getDuration("SCHEDULER_INTERVAL", time.Hour),
		SchedulerRunTimeout:  getDuration("SCHEDULER_RUN_TIMEOUT", 10*time.Minute),
		SchedulerItemTimeout: getDuration("SCHEDULER_ITEM_TIMEOUT", 10*time.Second),
		SchedulerLoadTimeout: getDuration("SCHEDULER_LOAD_TIMEOUT", 30*time.Second),
		SchedulerWorkers:     getInt("SCHEDULER_WORKERS", 8),

		RedisURL:     getEnv("REDIS_URL", ""),
		RedisLockTTL: getDuration("REDIS_LOCK_TTL", 15*time.Minute),
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}
