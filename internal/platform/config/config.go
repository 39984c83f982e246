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

	AccessTokenKey  []byte
	RefreshTokenKey []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	CacheBackend string // "memory" or "redis"
	TaskCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenPurgeInterval time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		AccessTokenKey:     []byte(getEnv("ACCESS_TOKEN_SECRET", "defaultaccesssecret")),
		RefreshTokenKey:    []byte(getEnv("REFRESH_TOKEN_SECRET", "defaultrefreshsecret")),
		AccessTokenTTL:     time.Duration(getEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL:    time.Duration(getEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 168)) * time.Hour,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "taskzone_db"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		CacheBackend:       getEnv("CACHE_BACKEND", "memory"),
		TaskCacheTTL:       time.Duration(getEnvAsInt("TASK_CACHE_TTL_SECONDS", 600)) * time.Second,
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		TokenPurgeInterval: time.Duration(getEnvAsInt("TOKEN_PURGE_INTERVAL_MINUTES", 60)) * time.Minute,
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
