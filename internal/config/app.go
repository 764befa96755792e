package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"CabbageAI/pkg/yolo"

	"github.com/go-playground/validator/v10"
)

const (
	defaultHost                = "0.0.0.0"
	defaultPort                = "5000"
	defaultModelPath           = "best.onnx"
	defaultMetadataPath        = "model_metadata.json"
	defaultConfidenceThreshold = 0.25
	defaultIoUThreshold        = 0.7
	defaultMaxDetections       = 300
)

type AppConfig struct {
	Host                string   `validate:"required,hostname|ip"`
	Port                string   `validate:"required,numeric"`
	ModelPath           string   `validate:"required"`
	MetadataPath        string   `validate:"required"`
	OnnxRuntimeLibPath  string
	ConfidenceThreshold float32  `validate:"gte=0,lte=1"`
	IoUThreshold        float32  `validate:"gte=0,lte=1"`
	MaxDetections       int      `validate:"gte=1"`
	AllowedOrigins      []string `validate:"dive,required"`
}

// LoadAppConfig reads the service configuration from the environment,
// falling back to defaults for anything unset.
func LoadAppConfig(v *validator.Validate) (*AppConfig, error) {
	confidence, err := floatEnv("CONFIDENCE_THRESHOLD", defaultConfidenceThreshold)
	if err != nil {
		return nil, err
	}

	iou, err := floatEnv("IOU_THRESHOLD", defaultIoUThreshold)
	if err != nil {
		return nil, err
	}

	maxDetections, err := intEnv("MAX_DETECTIONS", defaultMaxDetections)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		Host:                stringEnv("APP_HOST", defaultHost),
		Port:                stringEnv("APP_PORT", defaultPort),
		ModelPath:           stringEnv("MODEL_PATH", defaultModelPath),
		MetadataPath:        stringEnv("MODEL_METADATA_PATH", defaultMetadataPath),
		OnnxRuntimeLibPath:  os.Getenv("ONNXRUNTIME_LIB_PATH"),
		ConfidenceThreshold: confidence,
		IoUThreshold:        iou,
		MaxDetections:       maxDetections,
		AllowedOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *AppConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *AppConfig) DetectorConfig() yolo.Config {
	return yolo.Config{
		ModelPath:           c.ModelPath,
		MetadataPath:        c.MetadataPath,
		SharedLibraryPath:   c.OnnxRuntimeLibPath,
		ConfidenceThreshold: c.ConfidenceThreshold,
		IoUThreshold:        c.IoUThreshold,
		MaxDetections:       c.MaxDetections,
	}
}

func (c *AppConfig) CORS() CORSConfig {
	return CORSConfig{AllowedOrigins: c.AllowedOrigins}
}

func stringEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func floatEnv(key string, fallback float32) (float32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return float32(value), nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
