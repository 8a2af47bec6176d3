package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting the service recognizes. Values come
// from environment variables with sensible local-dev defaults.
type Config struct {
	AppPort          string
	DatabaseURL      string
	S3BucketName     string
	StaticBaseURL    string
	UploadDir        string
	VTONAPIURL       string
	VTONAPIKey       string
	VTONModelVersion string
	EnableMockVTON   bool
	CORSAllowOrigins string
	RabbitMQURL      string
}

// Load reads configuration from the environment via Viper.
func Load() Config {
	viper.SetDefault("APP_PORT", ":8000")
	viper.SetDefault("DATABASE_URL", "closet.db")
	viper.SetDefault("S3_BUCKET_NAME", "closet-assets")
	viper.SetDefault("STATIC_BASE_URL", "http://localhost:8000")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("VTON_API_URL", "https://api.replicate.com/v1/predictions")
	viper.SetDefault("VTON_API_KEY", "")
	viper.SetDefault("VTON_MODEL_VERSION", "replace-with-provider-model-version")
	viper.SetDefault("ENABLE_MOCK_VTON", true)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	return Config{
		AppPort:          viper.GetString("APP_PORT"),
		DatabaseURL:      viper.GetString("DATABASE_URL"),
		S3BucketName:     viper.GetString("S3_BUCKET_NAME"),
		StaticBaseURL:    strings.TrimRight(viper.GetString("STATIC_BASE_URL"), "/"),
		UploadDir:        viper.GetString("UPLOAD_DIR"),
		VTONAPIURL:       viper.GetString("VTON_API_URL"),
		VTONAPIKey:       viper.GetString("VTON_API_KEY"),
		VTONModelVersion: viper.GetString("VTON_MODEL_VERSION"),
		EnableMockVTON:   viper.GetBool("ENABLE_MOCK_VTON"),
		CORSAllowOrigins: viper.GetString("CORS_ALLOW_ORIGINS"),
		RabbitMQURL:      viper.GetString("RABBITMQ_URL"),
	}
}
