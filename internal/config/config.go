package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port             string
	JWTSecret        string
	GoogleClientID   string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	RedisURL         string
	CloudinaryConfig CloudinaryConfig
	PaymentConfig    PaymentConfig
	AppEnv           string // Окружение приложения (development/production)

	// AutoRetireItems управляет автоматическим переводом предметов в статус
	// traded при завершении обмена
	AutoRetireItems bool
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// PaymentConfig содержит конфигурацию платежного провайдера
type PaymentConfig struct {
	BaseURL   string
	SecretKey string
	Sandbox   bool // В режиме sandbox внешние вызовы не выполняются
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "trademe_user"),
		Password: getEnv("PGPASSWORD", "trademe_pass"),
		Name:     getEnv("PGDATABASE", "trademe"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "trademe_items"),
	}

	paymentConfig := PaymentConfig{
		BaseURL:   getEnv("PAYMENT_API_URL", "https://api.payments.example.com"),
		SecretKey: getEnv("PAYMENT_SECRET_KEY", ""),
		Sandbox:   getEnv("PAYMENT_SANDBOX", "true") == "true",
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CloudinaryConfig: cloudinaryConfig,
		PaymentConfig:    paymentConfig,
		AppEnv:           getEnv("APP_ENV", "production"), // По умолчанию production
		AutoRetireItems:  getEnv("AUTO_RETIRE_ITEMS", "true") == "true",
	}

	if cfg.JWTSecret == "" {
		log.Fatal("❌ Ошибка: Не задана переменная окружения JWT_SECRET")
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
