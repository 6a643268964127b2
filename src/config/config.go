package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string
	FrontendURL  string

	// Upload limits
	MaxUploadSizeBytes int64

	// Reporting settings
	TopMerchantsLimit      int
	DefaultRecommendations int
	ReportCacheTTL         time.Duration

	// Anomaly detection thresholds
	AnomalyOutlierMultiplier float64
	AnomalySpikeMultiplier   float64
	AnomalyMinPriorMonths    int
	IncomeDropRatio          float64
	AnomalyGrowthMultiplier  float64

	// Narrative (LLM) settings
	NarrativeEnabled bool
	NarrativeTimeout time.Duration
	GeminiModel      string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory (common when running from /backend)
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760") // 10MB default
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./finsight.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),

		// Upload
		MaxUploadSizeBytes: maxUploadSizeBytes,

		// Reporting
		TopMerchantsLimit:      getEnvAsInt("TOP_MERCHANTS_LIMIT", 5),
		DefaultRecommendations: getEnvAsInt("DEFAULT_RECOMMENDATIONS", 3),
		ReportCacheTTL:         getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),

		// Anomaly thresholds
		AnomalyOutlierMultiplier: getEnvAsFloat("ANOMALY_OUTLIER_MULTIPLIER", 3.0),
		AnomalySpikeMultiplier:   getEnvAsFloat("ANOMALY_SPIKE_MULTIPLIER", 2.0),
		AnomalyMinPriorMonths:    getEnvAsInt("ANOMALY_MIN_PRIOR_MONTHS", 2),
		IncomeDropRatio:          getEnvAsFloat("INCOME_DROP_RATIO", 0.5),
		AnomalyGrowthMultiplier:  getEnvAsFloat("ANOMALY_GROWTH_MULTIPLIER", 1.3),

		// Narrative
		NarrativeEnabled: getEnvAsBool("NARRATIVE_ENABLED", false),
		NarrativeTimeout: getEnvAsDuration("NARRATIVE_TIMEOUT", 20*time.Second),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, NarrativeEnabled=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.NarrativeEnabled)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float or returns a fallback.
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %f", key, valueStr, fallback)
	return fallback
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
