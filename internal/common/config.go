package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Decode   DecodeConfig
	Policy   PolicyConfig
	Export   ExportConfig
	BaseDir  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "rus+eng"
	TessdataDir string
	DPI         int // rasterization DPI for OCR of PDF pages, default 216
}

// DecodeConfig holds QR-decoding configuration
type DecodeConfig struct {
	DPI      int // rasterization DPI for QR search in PDFs; >= 288 (4x zoom)
	MaxPages int // 0 = no limit
}

// PolicyConfig holds business-policy defaults. The amount cap and the meal
// deduction weights are undocumented company policy, so they are
// configurable rather than baked into the reconciler.
type PolicyConfig struct {
	AmountMin           float64
	AmountMax           float64
	MealBreakfastWeight float64
	MealLunchWeight     float64
	MealDinnerWeight    float64
}

// ExportConfig holds document-export configuration
type ExportConfig struct {
	TemplatePath string // advance-report XLSX template; empty -> plain workbook
	OutputDir    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "rus+eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("OCR_DPI", 216),
		},
		Decode: DecodeConfig{
			DPI:      getEnvAsInt("QR_DPI", 288),
			MaxPages: getEnvAsInt("QR_MAX_PAGES", 0),
		},
		Policy: PolicyConfig{
			AmountMin:           getEnvAsFloat64("AMOUNT_MIN", 0),
			AmountMax:           getEnvAsFloat64("AMOUNT_MAX", 200000),
			MealBreakfastWeight: getEnvAsFloat64("MEAL_BREAKFAST_WEIGHT", 0.15),
			MealLunchWeight:     getEnvAsFloat64("MEAL_LUNCH_WEIGHT", 0.30),
			MealDinnerWeight:    getEnvAsFloat64("MEAL_DINNER_WEIGHT", 0.30),
		},
		Export: ExportConfig{
			TemplatePath: getEnv("AO_TEMPLATE_PATH", ""),
			OutputDir:    getEnv("OUTPUT_DIR", "./output"),
		},
		BaseDir: getEnv("BASE_DIR", "."),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Decode.DPI < 288 {
		return NewAppError("CONFIG_ERROR", "QR_DPI must be at least 288", ErrInvalidInput)
	}
	if c.Policy.AmountMax <= c.Policy.AmountMin {
		return NewAppError("CONFIG_ERROR", "AMOUNT_MAX must exceed AMOUNT_MIN", ErrInvalidInput)
	}
	return nil
}
