package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI      string
	DBName        string
	JWTSecret     string
	SessionSecret string
	TokenTTL      time.Duration
	PublicURL     string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	UploadDir string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:      getEnvOrDefault("MONGO_URI", ""),
		DBName:        getEnvOrDefault("DB_NAME", "linahstore"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "fallback-secret-change-in-prod"),
		TokenTTL:      getDurationEnv("TOKEN_TTL", 24, time.Hour),
		PublicURL:     getEnvOrDefault("PUBLIC_URL", "http://localhost:8080"),
		SMTPHost:      getEnvOrDefault("EMAIL_HOST", "smtp.gmail.com"),
		SMTPPort:      getIntEnv("EMAIL_PORT", 587),
		SMTPUser:      getEnvOrDefault("EMAIL_USER", ""),
		SMTPPass:      getEnvOrDefault("EMAIL_PASS", ""),
		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./uploads"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
