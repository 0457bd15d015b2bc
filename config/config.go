package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"os"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Server
	Port   string
	AppEnv string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Billing scheduler
	BillingCronEnabled bool
	BillingCronSpec    string
	BillingDueDay      int
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Parse JWT_EXPIRES_IN with day/week shorthand support
	jwtExpiresStr := getEnv("JWT_EXPIRES_IN", "7d")
	jwtExpires, err := time.ParseDuration(jwtExpiresStr)
	if err != nil {
		jwtExpires, err = parseDurationShorthand(jwtExpiresStr)
		if err != nil {
			log.Fatal("Invalid JWT_EXPIRES_IN format:", err)
		}
	}

	rateLimitMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	if err != nil {
		log.Fatal("Invalid RATE_LIMIT_MAX format:", err)
	}
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		log.Fatal("Invalid RATE_LIMIT_WINDOW format:", err)
	}

	dueDay, err := strconv.Atoi(getEnv("BILLING_DUE_DAY", "10"))
	if err != nil || dueDay < 1 || dueDay > 28 {
		log.Fatal("Invalid BILLING_DUE_DAY: must be a number between 1 and 28")
	}

	AppConfig = &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "musicschool_go"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:    getEnv("JWT_SECRET", "your_super_secret_jwt_key"),
		JWTExpiresIn: jwtExpires,

		Port:   getEnv("PORT", "5000"),
		AppEnv: getEnv("APP_ENV", "development"),

		RateLimitMax:    rateLimitMax,
		RateLimitWindow: rateLimitWindow,

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "logs/app.log"),

		BillingCronEnabled: strings.ToLower(getEnv("BILLING_CRON_ENABLED", "false")) == "true",
		BillingCronSpec:    getEnv("BILLING_CRON_SPEC", "0 2 1 * *"),
		BillingDueDay:      dueDay,
	}

	validateConfig(AppConfig)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationShorthand handles "7d" / "2w" style values that
// time.ParseDuration rejects.
func parseDurationShorthand(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, err
	}
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n*7) * 24 * time.Hour, nil
	}
	return 0, strconv.ErrSyntax
}

func validateConfig(c *Config) {
	// Only enforce stricter rules in production
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	required := map[string]string{
		"DB_PASSWORD": c.DBPassword,
		"JWT_SECRET":  c.JWTSecret,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			log.Fatalf("Missing required secret %s in production", k)
		}
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
}
