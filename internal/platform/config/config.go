package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	// Registering with this email grants the admin role.
	AdminEmail string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RankingsCacheTTLSeconds int

	ValidationQueueName        string
	ValidationLockKey          string
	ValidationLockTTLSeconds   int
	ExecutorURL                string
	ExecutorWebhookCallbackURL string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 168)) * time.Hour,
		AdminEmail: getEnv("ADMIN_EMAIL", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "challengehub_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RankingsCacheTTLSeconds: getEnvAsInt("RANKINGS_CACHE_TTL_SECONDS", 60),

		ValidationQueueName:        getEnv("VALIDATION_QUEUE_NAME", "code_validation_queue"),
		ValidationLockKey:          getEnv("VALIDATION_LOCK_KEY", "code_validation_lock"),
		ValidationLockTTLSeconds:   getEnvAsInt("VALIDATION_LOCK_TTL_SECONDS", 300),
		ExecutorURL:                getEnv("EXECUTOR_URL", "http://localhost:9090/execute"),
		ExecutorWebhookCallbackURL: getEnv("EXECUTOR_WEBHOOK_CALLBACK_URL", "http://localhost:8080/api/v1/webhook/execution"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
