package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	AWS           AWSConfig
	Challenge     ChallengeConfig
	Contact       ContactConfig
	Archive       ArchiveConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type AWSConfig struct {
	Region   string
	SecretID string
}

// ChallengeConfig holds bot-challenge settings. Secrets set here bypass the
// secret store; site keys are public and served to the browser widget.
type ChallengeConfig struct {
	TurnstileSecret  string
	HCaptchaSecret   string
	TurnstileSiteKey string
	HCaptchaSiteKey  string
	MaxRetries       int
	BaseDelayMs      int
}

type ContactConfig struct {
	FromAddress string
	ToAddress   string
	NotifyURL   string
}

type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://menma.dev,https://www.menma.dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("CHALLENGE_MAX_RETRIES", 3)
	v.SetDefault("CHALLENGE_BASE_DELAY_MS", 1000)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // tracing disabled unless set
	v.SetDefault("O11Y_BE_SERVICE_NAME", "portfolio-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "menma-dev")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "portfolio-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		AWS: AWSConfig{
			Region:   v.GetString("AWS_REGION"),
			SecretID: v.GetString("AWS_SECRET_ID"),
		},
		Challenge: ChallengeConfig{
			TurnstileSecret:  v.GetString("TURNSTILE_SECRET"),
			HCaptchaSecret:   v.GetString("HCAPTCHA_SECRET"),
			TurnstileSiteKey: v.GetString("NEXT_PUBLIC_TURNSTILE_SITE_KEY"),
			HCaptchaSiteKey:  v.GetString("NEXT_PUBLIC_HCAPTCHA_SITE_KEY"),
			MaxRetries:       v.GetInt("CHALLENGE_MAX_RETRIES"),
			BaseDelayMs:      v.GetInt("CHALLENGE_BASE_DELAY_MS"),
		},
		Contact: ContactConfig{
			FromAddress: v.GetString("CONTACT_FROM_ADDRESS"),
			ToAddress:   v.GetString("CONTACT_TO_ADDRESS"),
			NotifyURL:   v.GetString("CONTACT_NOTIFY_URL"),
		},
		Archive: ArchiveConfig{
			Bucket:          v.GetString("ARCHIVE_BUCKET"),
			Region:          v.GetString("ARCHIVE_REGION"),
			Endpoint:        v.GetString("ARCHIVE_ENDPOINT"),
			AccessKeyID:     v.GetString("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("ARCHIVE_SECRET_ACCESS_KEY"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if cfg.Archive.Region == "" {
		cfg.Archive.Region = cfg.AWS.Region
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks settings the server cannot start without. Contact addresses,
// region and secret id are not checked here; a missing value fails the
// affected submission instead.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Challenge.MaxRetries < 0 {
		return fmt.Errorf("CHALLENGE_MAX_RETRIES must not be negative")
	}
	if c.Challenge.BaseDelayMs < 0 {
		return fmt.Errorf("CHALLENGE_BASE_DELAY_MS must not be negative")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// ContactConfigured reports whether both contact addresses are set
func (c *Config) ContactConfigured() bool {
	return c.Contact.FromAddress != "" && c.Contact.ToAddress != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
