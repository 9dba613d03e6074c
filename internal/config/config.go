package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver   string // "postgres" or "mysql"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	// AdminEmail and SupportEmail are the two privileged addresses that
	// bypass OTP verification and receive elevated roles at registration.
	AdminEmail   string
	SupportEmail string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	UploadDir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "comptrack"),
		DBPassword: getEnv("DB_PASSWORD", "comptrack"),
		DBName:     getEnv("DB_NAME", "comptrack"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmail:   getEnv("ADMIN_EMAIL", ""),
		SupportEmail: getEnv("SUPPORT_EMAIL", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", "CompTrack <no-reply@comptrack.local>"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if !cfg.MailConfigured() {
		log.Println("EMAIL_USER/EMAIL_PASS not set, mail delivery disabled (OTPs are returned in responses)")
	}

	return cfg
}

// MailConfigured reports whether outbound email credentials are present.
func (c *Config) MailConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPassword != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
