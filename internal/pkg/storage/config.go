package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

// Config holds the S3 photo storage configuration.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads the storage configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_STORAGE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if S3 photo storage is enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// Variant names for the object key layout.
const (
	VariantOriginal  = "original"
	VariantThumbnail = "thumb"
	VariantWatermark = "watermark"
)

// ObjectKey builds the canonical key for a photo variant.
// Format: albums/<albumID>/<variant>/<uuid><ext>
func (c *Config) ObjectKey(albumID uint, photoUUID, variant, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("albums/%d/%s/%s%s", albumID, variant, photoUUID, ext)
}

// GetAppEnv returns the current application environment.
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}
