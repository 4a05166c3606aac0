package config

import (
	"fmt"
	"os"
	"strconv"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	AccessKey   string
	SecretKey   string
	Region      string
	Bucket      string
	VideoPrefix string
	AudioPrefix string
}

type AgentConfig struct {
	APIKey  string
	AgentID string
	BaseURL string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	SupportEmail string
}

type AppConfig struct {
	Port          string
	Database      DatabaseConfig
	Storage       StorageConfig
	Agent         AgentConfig
	Email         EmailConfig
	JWTSecret     string
	Environment   string
	PageSize      int
	RecordingsDir string
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	password := getEnv("DB_PASSWORD", "")

	if password == "" {
		fmt.Println("Warning: DB_PASSWORD environment variable is not set.")
		fmt.Println("   Set database credentials in .env or the environment before starting.")
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: password,
		DBName:   getEnv("DB_NAME", "clutchjobs"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		AccessKey:   getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Region:      getEnv("AWS_REGION", ""),
		Bucket:      getEnv("AWS_S3_BUCKET", ""),
		VideoPrefix: getEnv("VIDEO_STORAGE_PREFIX", "interviews"),
		AudioPrefix: getEnv("AUDIO_STORAGE_PREFIX", "interview-audio"),
	}
}

func GetAgentConfig() AgentConfig {
	return AgentConfig{
		APIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		AgentID: getEnv("ELEVENLABS_AGENT_ID", ""),
		BaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
	}
}

func GetEmailConfig() EmailConfig {
	return EmailConfig{
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@clutchjobs.ca"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@clutchjobs.ca"),
	}
}

func GetAppConfig() AppConfig {
	pageSize, _ := strconv.Atoi(getEnv("JOBS_PAGE_SIZE", "10"))

	return AppConfig{
		Port:          getEnv("PORT", "8081"),
		Database:      GetDatabaseConfig(),
		Storage:       GetStorageConfig(),
		Agent:         GetAgentConfig(),
		Email:         GetEmailConfig(),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		PageSize:      pageSize,
		RecordingsDir: getEnv("RECORDINGS_DIR", "recordings"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
