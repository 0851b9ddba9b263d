// Package config reads settings from the environment, after loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmorgan81/dallebot/internal/image"
	"github.com/joho/godotenv"
)

type Config struct {
	// OpenAIKey is used as-is when set; otherwise it is read from the SSM parameter OpenAIKeyParam.
	OpenAIKey      string
	OpenAIKeyParam string
	OpenAIBaseURL  string

	Dir     string
	Size    string
	Quality string
	Count   int

	// Bucket switches persistence from the local filesystem to S3.
	Bucket       string
	Distribution string

	HTTPTimeout time.Duration
	LogLevel    string
}

// Load reads the environment. A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIKeyParam: os.Getenv("OPENAI_API_KEY_PARAM"),
		OpenAIBaseURL:  getenv("OPENAI_BASE_URL", image.DefaultBaseURL),
		Dir:            getenv("IMAGE_DIR", "."),
		Size:           getenv("IMAGE_SIZE", image.DefaultSize),
		Quality:        getenv("IMAGE_QUALITY", image.DefaultQuality),
		Bucket:         os.Getenv("BUCKET"),
		Distribution:   os.Getenv("DISTRIBUTION"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.Count, err = strconv.Atoi(getenv("IMAGE_COUNT", strconv.Itoa(image.DefaultCount))); err != nil {
		return nil, fmt.Errorf("IMAGE_COUNT: %w", err)
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getenv("HTTP_TIMEOUT", "2m")); err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}

	if cfg.OpenAIKey == "" && cfg.OpenAIKeyParam == "" {
		return nil, errors.New("OPENAI_API_KEY or OPENAI_API_KEY_PARAM must be set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
