// Package config reads pipeline configuration from environment variables.
package config

import (
	"os"
	"runtime"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all pipeline configuration
type Config struct {
	Limits    LimitsConfig
	OCR       OCRConfig
	Artifacts ArtifactsConfig
	Rows      RowsConfig
	PII       PIIConfig
	Metrics   MetricsConfig
}

// LimitsConfig caps the work a single document may trigger.
type LimitsConfig struct {
	MaxPages        int
	MaxCharsPerPage int
	MaxFileSizeMB   int
	PageWorkers     int
}

// OCRConfig controls the tesseract fallback for image-only pages.
type OCRConfig struct {
	Enabled       bool
	MaxPages      int
	DPI           int
	MaxConcurrent int
	Languages     string
	EngineMode    int // tesseract --oem
	PageSegMode   int // tesseract --psm
}

// ArtifactsConfig controls what the store persists alongside results.
type ArtifactsConfig struct {
	Dir          string
	IncludeTexts bool
	IncludeWords bool
	IncludeRaw   bool
}

// RowsConfig tunes the row normalizer.
type RowsConfig struct {
	EarlyStopRows int // 0 disables the short-circuit
}

// PIIConfig controls masking scope.
type PIIConfig struct {
	AccountNumbersOnly bool
}

// MetricsConfig controls extraction-quality alerts and the duplicate key.
type MetricsConfig struct {
	TokensDominateAlert bool
	TokensDominateRatio float64
	// DupIncludePage widens the duplicate key with the page index so that
	// identical rows on different pages survive.
	DupIncludePage bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxPages:        getEnvAsInt("FF_MAX_PAGES", 200),
			MaxCharsPerPage: getEnvAsInt("FF_MAX_CHARS_PER_PAGE", 20000),
			MaxFileSizeMB:   getEnvAsInt("FF_MAX_PDF_SIZE_MB", 20),
			PageWorkers:     getEnvAsInt("FF_PDF_MAX_WORKERS", runtime.NumCPU()),
		},
		OCR: OCRConfig{
			Enabled:       getEnvAsBool("FF_OCR_ENABLED", true),
			MaxPages:      getEnvAsInt("FF_OCR_MAX_PAGES", 5),
			DPI:           getEnvAsInt("FF_OCR_DPI", 300),
			MaxConcurrent: getEnvAsInt("FF_OCR_MAX_CONCURRENT", 2),
			Languages:     getEnv("FF_TESS_LANGS", "eng"),
			EngineMode:    getEnvAsInt("FF_TESS_OEM", 1),
			PageSegMode:   getEnvAsInt("FF_TESS_PSM", 6),
		},
		Artifacts: ArtifactsConfig{
			Dir:          getEnv("FF_ARTIFACTS_DIR", "/tmp/futurefinance_artifacts"),
			IncludeTexts: getEnvAsBool("FF_ARTIFACTS_INCLUDE_TEXTS", false),
			IncludeWords: getEnvAsBool("FF_ARTIFACTS_INCLUDE_WORDS", false),
			IncludeRaw:   getEnvAsBool("FF_ARTIFACTS_INCLUDE_RAW", false),
		},
		Rows: RowsConfig{
			EarlyStopRows: getEnvAsInt("FF_EARLY_STOP_MIN_ROWS", 0),
		},
		PII: PIIConfig{
			AccountNumbersOnly: getEnvAsBool("FF_PII_MASK_ACCOUNT_ONLY", true),
		},
		Metrics: MetricsConfig{
			TokensDominateAlert: getEnvAsBool("FF_METRICS_ALERT_TOKENS_DOMINATE", true),
			TokensDominateRatio: getEnvAsFloat("FF_METRICS_TOKENS_DOMINATE_RATIO", 0.6),
			DupIncludePage:      getEnvAsBool("FF_DUP_INCLUDE_PAGE", false),
		},
	}
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (c *LimitsConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
