// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Report sinks
const (
	ReportSinkSheets = "sheets"
	ReportSinkXLSX   = "xlsx"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string
	Timezone   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Postgres fleet registry
	PostgresDSN string

	// Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	SpreadsheetID      string
	FCMProjectID       string

	// Reports
	ReportSink string
	ReportDir  string

	// Booking proxy
	BookingProxyURL     string
	BookingProxyToken   string
	BookingProxyTimeout time.Duration

	// Shifts
	AutoCompleteInterval time.Duration
	DefaultBusCapacity   int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Timezone:     getEnv("TIMEZONE", "Atlantic/Reykjavik"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "tourstaff"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		SpreadsheetID:      getEnv("SHEETS_SPREADSHEET_ID", ""),
		FCMProjectID:       getEnv("FCM_PROJECT_ID", ""),

		ReportSink: strings.ToLower(getEnv("REPORT_SINK", ReportSinkXLSX)),
		ReportDir:  getEnv("REPORT_DIR", "reports"),

		BookingProxyURL:     getEnv("BOOKING_PROXY_URL", "http://localhost:3000"),
		BookingProxyToken:   getEnv("BOOKING_PROXY_TOKEN", ""),
		BookingProxyTimeout: getEnvAsDuration("BOOKING_PROXY_TIMEOUT", 30*time.Second),

		AutoCompleteInterval: getEnvAsDuration("AUTO_COMPLETE_INTERVAL", time.Hour),
		DefaultBusCapacity:   getEnvAsInt("DEFAULT_BUS_CAPACITY", 19),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Location resolves the configured operating timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) validate() error {
	switch c.ReportSink {
	case ReportSinkSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required when REPORT_SINK=sheets")
		}
	case ReportSinkXLSX:
	default:
		return fmt.Errorf("unknown REPORT_SINK %q", c.ReportSink)
	}
	if c.DefaultBusCapacity <= 0 {
		return fmt.Errorf("DEFAULT_BUS_CAPACITY must be positive")
	}
	if c.AutoCompleteInterval <= 0 {
		return fmt.Errorf("AUTO_COMPLETE_INTERVAL must be positive")
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "1h") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
