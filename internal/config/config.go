package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	// StorageBackend selects where documents live: memory, file,
	// redis, or mysql.
	StorageBackend string
	StorageFile    string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	MySQLDSN       string

	SessionWarning time.Duration
	SessionTimeout time.Duration

	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env
// file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		StorageBackend:     getEnv("STORAGE_BACKEND", "file"),
		StorageFile:        getEnv("STORAGE_FILE", "gatehouse.json"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		MySQLDSN:           getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		SessionWarning:     getEnvDuration("SESSION_WARNING", 50*time.Second),
		SessionTimeout:     getEnvDuration("SESSION_TIMEOUT", 60*time.Second),
		MaxLoginAttempts:   getEnvInt("MAX_LOGIN_ATTEMPTS", 5),
		LoginAttemptWindow: getEnvDuration("LOGIN_ATTEMPT_WINDOW", 5*time.Minute),
		SwaggerHost:        os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
