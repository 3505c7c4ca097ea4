package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every setting the api, relay and seeder binaries read from the environment.
type Config struct {
	AppPort    string
	RelayPort  string
	AppBaseURL string
	LogLevel   string
	Timezone   string

	DBDSN          string
	DBMaxOpenConns int
	StoreTimeout   time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	PaymentTimeout    time.Duration
	StaleAttemptAfter time.Duration

	SMTP  SMTPConfig
	Redis RedisConfig

	RelayURL string
	Razorpay RazorpayConfig
	PhonePe  PhonePeConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

type PhonePeConfig struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	BaseURL     string
	RedirectURL string
	CallbackURL string
}

// Load builds a Config from environment variables, falling back to local development defaults.
func Load() *Config {
	return &Config{
		AppPort:    GetEnv("APP_PORT", "3000"),
		RelayPort:  GetEnv("RELAY_PORT", "3001"),
		AppBaseURL: GetEnv("APP_BASE_URL", "http://localhost:3000"),
		LogLevel:   GetEnv("LOG_LEVEL", "INFO"),
		Timezone:   GetEnv("APP_TIMEZONE", "Asia/Kolkata"),

		DBDSN:          GetEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/shramik?charset=utf8mb4&parseTime=True&loc=Local"),
		DBMaxOpenConns: GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		StoreTimeout:   GetEnvAsDuration("STORE_TIMEOUT", 5*time.Second),

		JWTSecret: GetEnv("JWT_SECRET", "change-me"),
		TokenTTL:  GetEnvAsDuration("TOKEN_TTL", 24*time.Hour),

		PaymentTimeout:    GetEnvAsDuration("PAYMENT_TIMEOUT", 20*time.Second),
		StaleAttemptAfter: GetEnvAsDuration("STALE_ATTEMPT_AFTER", 30*time.Minute),

		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST", ""),
			Port:     GetEnvAsInt("SMTP_PORT", 587),
			Username: GetEnv("SMTP_USER", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			From:     GetEnv("SMTP_FROM", ""),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", ""),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},

		RelayURL: GetEnv("RELAY_URL", "http://localhost:3001"),
		Razorpay: RazorpayConfig{
			KeyID:     GetEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: GetEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   GetEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		},
		PhonePe: PhonePeConfig{
			MerchantID:  GetEnv("PHONEPE_MERCHANT_ID", ""),
			SaltKey:     GetEnv("PHONEPE_SALT_KEY", ""),
			SaltIndex:   GetEnv("PHONEPE_SALT_INDEX", "1"),
			BaseURL:     GetEnv("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
			RedirectURL: GetEnv("PHONEPE_REDIRECT_URL", ""),
			CallbackURL: GetEnv("PHONEPE_CALLBACK_URL", ""),
		},
	}
}

// Location resolves the configured timezone; "today" for attendance marking is evaluated in it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper function to get environment variable with fallback default value
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get environment variable as integer with fallback
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// GetEnvAsDuration accepts Go duration strings such as "5s" or "30m".
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
