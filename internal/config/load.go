package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default values applied when neither the environment nor a config file
// provides a setting.
const (
	defaultPort                        = 8080
	defaultLogLevel                    = "info"
	defaultAccessTokenLifetimeMinutes  = 60
	defaultRefreshTokenLifetimeMinutes = 7 * 24 * 60 // 7 days
	defaultUploadDir                   = "public/uploads"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// DAYLOOP_ prefix with underscores for nesting (e.g. DAYLOOP_SERVER_PORT,
// DAYLOOP_AUTH_ACCESS_TOKEN_SECRET) and take precedence over file values.
// The returned Config has been validated and must not be mutated afterwards.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.log_level", defaultLogLevel)
	v.SetDefault("auth.access_token_lifetime_minutes", defaultAccessTokenLifetimeMinutes)
	v.SetDefault("auth.refresh_token_lifetime_minutes", defaultRefreshTokenLifetimeMinutes)
	v.SetDefault("auth.bcrypt_cost", 0) // 0 means "use the hasher's default"
	v.SetDefault("upload.dir", defaultUploadDir)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DAYLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not make viper aware of keys that only exist in the
	// environment, so bind the ones we rely on explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.access_token_secret",
		"auth.refresh_token_secret",
		"auth.access_token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes",
		"auth.bcrypt_cost",
		"upload.dir",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
