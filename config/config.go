package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// StorageDriver selects the attachment store: "local" or "b2"
	StorageDriver string
	UploadDir     string // local driver: directory for stored files
	UploadBaseURL string // local driver: public URL prefix for stored files
	B2AccountID   string
	B2AppKey      string
	B2Bucket      string

	RedisAddr string // empty disables profile caching

	SendGridKey string
	EmailSender string

	WebhookURL string // empty disables outbox delivery

	EnableSchedulers bool
}

// Load initializes configuration from environment variables or defaults
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "classroom"),
		DBPort:     getEnv("DB_PORT", "5432"),

		StorageDriver: getEnv("STORAGE_DRIVER", "local"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),
		B2AccountID:   getEnv("B2_ACCOUNT_ID", ""),
		B2AppKey:      getEnv("B2_APP_KEY", ""),
		B2Bucket:      getEnv("B2_BUCKET", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		SendGridKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender: getEnv("EMAIL_SENDER", "no-reply@classroom.app"),

		WebhookURL: getEnv("WEBHOOK_URL", ""),

		EnableSchedulers: getEnvBool("ENABLE_SCHEDULERS", true),
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.StorageDriver == "b2" && (cfg.B2AccountID == "" || cfg.B2AppKey == "" || cfg.B2Bucket == "") {
		log.Println("Warning: STORAGE_DRIVER=b2 but B2 credentials are incomplete.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a bool or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
