package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For session lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBDriver       string        // Database driver: mysql or postgres
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	SecretKey      string        // Key signing session cookies
	RedisAddr      string        // Redis server address
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	SessionTTL     time.Duration // Session lifetime
	IsProd         bool          // Is production environment
	AllowedOrigins []string      // Origins accepted by the CSRF check
	SiteURL        string        // Base URL for links sent by mail
	LoginURL       string        // Where anonymous visitors are sent
	MediaURL       string        // Prefix for uploaded media (profile pictures, product images)
	SMTPHost       string        // SMTP server host, empty logs mail instead
	SMTPPort       int           // SMTP server port
	SMTPUser       string        // SMTP username
	SMTPPass       string        // SMTP password
	MailFrom       string        // Sender address for outgoing mail
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587 // Fall back to submission port
	}
	port := getEnv("APP_PORT", "8000")
	origins := splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:"+port))
	return &Config{
		AppPort:        port,                                                     // Application port
		DBDriver:       getEnv("DB_DRIVER", "mysql"),                             // Database driver
		DBUser:         os.Getenv("DB_USER"),                                     // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                                 // Database password
		DBHost:         os.Getenv("DB_HOST"),                                     // Database host
		DBPort:         os.Getenv("DB_PORT"),                                     // Database port
		DBName:         os.Getenv("DB_NAME"),                                     // Database name
		SecretKey:      os.Getenv("SECRET_KEY"),                                  // Cookie signing key
		RedisAddr:      os.Getenv("REDIS_ADDR"),                                  // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                                  // Redis password
		RedisDB:        redisDB,                                                  // Redis database number
		SessionTTL:     parseDuration(os.Getenv("SESSION_TTL"), 14*24*time.Hour), // Two weeks by default
		IsProd:         os.Getenv("IS_PROD") == "true",                           // Is production environment
		AllowedOrigins: origins,
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", firstOr(origins, "http://localhost:"+port)), "/"),
		LoginURL:       getEnv("LOGIN_URL", "/account/login/"),   // Login page
		MediaURL:       getEnv("MEDIA_URL", "/media/"),           // Media prefix
		SMTPHost:       os.Getenv("SMTP_HOST"),                   // SMTP host
		SMTPPort:       smtpPort,                                 // SMTP port
		SMTPUser:       os.Getenv("SMTP_USER"),                   // SMTP user
		SMTPPass:       os.Getenv("SMTP_PASS"),                   // SMTP password
		MailFrom:       getEnv("MAIL_FROM", "admin@example.com"), // Sender address
	}
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// PostgresDSN builds the Data Source Name for the PostgreSQL driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// getEnv returns the variable value or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
