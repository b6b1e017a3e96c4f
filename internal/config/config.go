package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config собирает настройки процесса из окружения
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	Admin       AdminConfig
	Payment     PaymentConfig
}

// AdminConfig учётные данные администратора, засеваемые при старте
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// PaymentConfig параметры внешнего платёжного провайдера
type PaymentConfig struct {
	BaseURL     string
	Token       string
	LocationID  string
	RedirectURL string
	Currency    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Addr:        ":" + getEnv("PORT", "5000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Admin User"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("PAYMENT_API_URL", ""),
			Token:       getEnv("PAYMENT_API_TOKEN", ""),
			LocationID:  getEnv("PAYMENT_LOCATION_ID", ""),
			RedirectURL: getEnv("PAYMENT_REDIRECT_URL", ""),
			Currency:    getEnv("PAYMENT_CURRENCY", "USD"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
