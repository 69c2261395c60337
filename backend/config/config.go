package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	TokenTTL   time.Duration
	ServerPort string

	// LogFormat is "json" for production-style logs, anything else for console output.
	LogFormat      string
	LogLevel       string
	CookieSecure   bool
	CORSOrigins    string
	CurriculumFile string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, err
	}
	secure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "true"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "ibam"),
		DBSSLMode:      getEnv("DB_SSLMODE", "require"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		TokenTTL:       ttl,
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		CookieSecure:   secure,
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		CurriculumFile: getEnv("CURRICULUM_FILE", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
