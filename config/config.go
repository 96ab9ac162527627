package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server Configuration
	Port        string
	Environment string
	Debug       bool

	// Database Configuration
	MongoURI string
	DBName   string

	// Drive API Configuration
	DriveBaseURL      string
	DriveTokenURL     string
	DriveClientID     string
	DriveClientSecret string
	DriveScope        string
	DriveTimeout      time.Duration
	DriveMaxRetries   int

	// Provisioning Configuration
	TemplatesFile     string
	ReconcileInterval time.Duration

	// Security Configuration
	CORSAllowedOrigins []string
	RateLimitEnabled   bool

	// Application Configuration
	AppName    string
	AppVersion string
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	// A missing .env file is fine; real deployments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	config := &Config{
		// Server Configuration
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Debug:       getEnvAsBool("DEBUG", true),

		// Database Configuration
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "projectdrive"),

		// Drive API Configuration
		DriveBaseURL:      getEnv("DRIVE_BASE_URL", "https://graph.microsoft.com/v1.0/me/drive"),
		DriveTokenURL:     getEnv("DRIVE_TOKEN_URL", ""),
		DriveClientID:     getEnv("DRIVE_CLIENT_ID", ""),
		DriveClientSecret: getEnv("DRIVE_CLIENT_SECRET", ""),
		DriveScope:        getEnv("DRIVE_SCOPE", "https://graph.microsoft.com/.default"),
		DriveTimeout:      getEnvAsDuration("DRIVE_TIMEOUT", "30s"),
		DriveMaxRetries:   getEnvAsInt("DRIVE_MAX_RETRIES", 3),

		// Provisioning Configuration
		TemplatesFile:     getEnv("TEMPLATES_FILE", ""),
		ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL", "0s"), // 0 disables the background job

		// Security Configuration
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{}),
		RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),

		// Application Configuration
		AppName:    getEnv("APP_NAME", "ProjectDrive"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
	}

	// Set global config
	AppConfig = config

	// Log configuration in development
	if config.Debug {
		log.Printf("Configuration loaded: Environment=%s, Port=%s, Database=%s",
			config.Environment, config.Port, config.DBName)
	}

	return config
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	if parsed, err := time.ParseDuration(defaultValue); err == nil {
		return parsed
	}
	return 0
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetServerAddress returns the server address for listening
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// ValidateConfig validates the configuration
func (c *Config) ValidateConfig() error {
	if c.MongoURI == "" {
		log.Fatal("MONGO_URI environment variable is required")
	}

	if c.DriveTokenURL == "" || c.DriveClientID == "" || c.DriveClientSecret == "" {
		if c.IsProduction() {
			log.Fatal("DRIVE_TOKEN_URL, DRIVE_CLIENT_ID and DRIVE_CLIENT_SECRET are required in production")
		}
		log.Println("Warning: drive credentials are not fully configured, remote calls will fail until they are")
	}

	if c.TemplatesFile != "" {
		if _, err := os.Stat(c.TemplatesFile); err != nil {
			log.Printf("Warning: templates file %s is not readable: %v", c.TemplatesFile, err)
		}
	}

	return nil
}
