package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                int
	Password            string
	ModelPath           string
	ModelConfigPath     string
	ClassifierInputSize int // Model input edge in pixels
	ImageDirectory      string
	DatabasePath        string
	SnapshotBufferLimit int // Snapshots buffered per camera between flushes
	FlushInterval       int // Seconds between snapshot flushes
	ResultQueueSize     int // Normalized frames waiting for classification
	MinConfidence       float64
	LogDirectory        string
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:                getEnvAsInt("PORT", 8080),
		Password:            getEnv("PASSWORD", "maskwatch"),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "face_mask_detection.onnx")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", ""),
		ClassifierInputSize: getEnvAsInt("CLASSIFIER_INPUT_SIZE", 224),
		ImageDirectory:      getEnv("IMAGE_DIR", filepath.Join(".", "images")),
		DatabasePath:        getEnv("DB_PATH", filepath.Join(".", "data", "snapshots.db")),
		SnapshotBufferLimit: getEnvAsInt("BUFFER_LIMIT", 7),
		FlushInterval:       getEnvAsInt("FLUSH_INTERVAL", 30),
		ResultQueueSize:     getEnvAsInt("RESULT_QUEUE_SIZE", 4),
		MinConfidence:       getEnvAsFloat("MIN_CONFIDENCE", 0.5),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
