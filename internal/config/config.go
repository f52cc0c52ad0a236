package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Points   PointsConfig
	Renderer RendererConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// PointsConfig holds the pricing and reward knobs. Zero expire-days means
// the granted batch never expires.
type PointsConfig struct {
	PointsPerPage                 int64
	RegisterBonusPoints           int64
	RegisterBonusExpireDays       int
	ReferralInviterRegisterPoints int64
	ReferralInviteeRegisterPoints int64
	ReferralInviterUpgradePoints  int64
	ReferralPointsExpireDays      int
}

type RendererConfig struct {
	// PageDelayMs simulates upstream latency for the local renderer.
	PageDelayMs int
	TopicName   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "PageCraft"),
		},
		Points: PointsConfig{
			PointsPerPage:                 getEnvAsInt64("POINTS_PER_PAGE", 10),
			RegisterBonusPoints:           getEnvAsInt64("REGISTER_BONUS_POINTS", 300),
			RegisterBonusExpireDays:       getEnvAsInt("REGISTER_BONUS_EXPIRE_DAYS", 3),
			ReferralInviterRegisterPoints: getEnvAsInt64("REFERRAL_INVITER_REGISTER_POINTS", 100),
			ReferralInviteeRegisterPoints: getEnvAsInt64("REFERRAL_INVITEE_REGISTER_POINTS", 100),
			ReferralInviterUpgradePoints:  getEnvAsInt64("REFERRAL_INVITER_UPGRADE_POINTS", 500),
			ReferralPointsExpireDays:      getEnvAsInt("REFERRAL_POINTS_EXPIRE_DAYS", 0),
		},
		Renderer: RendererConfig{
			PageDelayMs: getEnvAsInt("RENDERER_PAGE_DELAY_MS", 200),
			TopicName:   getEnv("RENDER_JOBS_TOPIC_NAME", "RENDER_PAGE_JOBS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}
