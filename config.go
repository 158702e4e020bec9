package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ProviderKind selects the image-generation backend
type ProviderKind int

const (
	ProviderNone ProviderKind = iota
	ProviderStability
	ProviderAutomatic1111
)

// String returns the display name for a provider
func (p ProviderKind) String() string {
	switch p {
	case ProviderStability:
		return "Stability"
	case ProviderAutomatic1111:
		return "Automatic1111"
	default:
		return "None"
	}
}

const (
	defaultStabilityHost   = "https://api.stability.ai"
	defaultStabilityEngine = "stable-diffusion-v1-6"
	defaultA1111Host       = "http://127.0.0.1:7860"
	defaultAPIKeyHeader    = "X-API-Key"
)

// envConfig mirrors the environment variables read at startup
type envConfig struct {
	Provider string `envconfig:"AI_GACHA_PROVIDER"`

	StabilityAPIKey string `envconfig:"STABILITY_API_KEY"`
	StabilityHost   string `envconfig:"STABILITY_API_HOST"`
	StabilityEngine string `envconfig:"STABILITY_ENGINE_ID"`

	A1111Host         string `envconfig:"A1111_API_HOST"`
	A1111BasicAuth    string `envconfig:"A1111_API_AUTH"`
	A1111APIKey       string `envconfig:"A1111_API_KEY"`
	A1111APIKeyHeader string `envconfig:"A1111_API_KEY_HEADER"`
	NegativePrompt    string `envconfig:"A1111_NEGATIVE_PROMPT"`

	Timeout time.Duration `envconfig:"AI_GACHA_TIMEOUT" default:"120s"`

	Theme     string `envconfig:"GACHA_THEME" default:"Dracula"`
	ThemeFile string `envconfig:"GACHA_THEME_FILE"`
}

// AIServiceConfig is resolved once per process and never mutated afterwards
type AIServiceConfig struct {
	Provider       ProviderKind
	Host           string
	EngineID       string
	APIKey         string
	BasicAuth      string
	APIKeyHeader   string
	APIKeyValue    string
	NegativePrompt string
	Timeout        time.Duration
}

// Config holds everything read from the environment
type Config struct {
	AI        AIServiceConfig
	Theme     string
	ThemeFile string
}

// LoadConfig loads envFile if it exists, then reads the environment
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return &Config{
		AI:        resolveAIConfig(env),
		Theme:     env.Theme,
		ThemeFile: env.ThemeFile,
	}, nil
}

// resolveAIConfig applies provider selection and per-provider defaults.
// An unset provider with a Stability key becomes Stability; anything still
// unset falls back to a local Automatic1111 instance.
func resolveAIConfig(env envConfig) AIServiceConfig {
	cfg := AIServiceConfig{
		Provider:       parseProvider(env.Provider),
		APIKey:         env.StabilityAPIKey,
		NegativePrompt: env.NegativePrompt,
		Timeout:        env.Timeout,
	}

	if cfg.Provider == ProviderNone && cfg.APIKey != "" {
		cfg.Provider = ProviderStability
	}
	if cfg.Provider == ProviderNone {
		cfg.Provider = ProviderAutomatic1111
	}

	switch cfg.Provider {
	case ProviderStability:
		cfg.Host = valueOr(env.StabilityHost, defaultStabilityHost)
		cfg.EngineID = valueOr(env.StabilityEngine, defaultStabilityEngine)
	case ProviderAutomatic1111:
		cfg.Host = valueOr(env.A1111Host, defaultA1111Host)
		cfg.BasicAuth = env.A1111BasicAuth
		cfg.APIKeyValue = env.A1111APIKey
		cfg.APIKeyHeader = env.A1111APIKeyHeader
		if cfg.APIKeyHeader == "" && cfg.APIKeyValue != "" {
			cfg.APIKeyHeader = defaultAPIKeyHeader
		}
	}

	return cfg
}

func parseProvider(value string) ProviderKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "stability":
		return ProviderStability
	case "automatic1111", "a1111":
		return ProviderAutomatic1111
	default:
		return ProviderNone
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
