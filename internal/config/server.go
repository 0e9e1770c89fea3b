package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// ServerConfig configures the detection service. Values come from the environment.
type ServerConfig struct {
	Port                int
	ModelPath           string
	ModelConfigPath     string
	ConfidenceThreshold float64
	MaxUploadMB         int
	LogLevel            string
	LogFile             string
}

func LoadServer() *ServerConfig {
	return &ServerConfig{
		Port:                getEnvAsInt("PORT", 8000),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		MaxUploadMB:         getEnvAsInt("MAX_UPLOAD_MB", 20),
		LogLevel:            getEnv(EnvLogLevel, "info"),
		LogFile:             getEnv(EnvLogFile, ""),
	}
}

// MaxUploadBytes is the multipart memory limit derived from MaxUploadMB.
func (c *ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return defaultValue
}
