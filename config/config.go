package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the identity backend.
// Tags use mapstructure for Viper unmarshalling; every key can be
// overridden with an environment variable of the same name.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// GoogleClientID is the OAuth client id the mobile app signs in
	// with; ID tokens must carry it as their audience.
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`

	// SessionSecret signs the application session credential.
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	// RedisAddr enables the shared verified-claims cache. Empty means
	// the in-process cache is used.
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	CORSAllowOrigins []string `mapstructure:"CORS_ALLOW_ORIGINS"`
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/agrishield-identity/")
	v.AddConfigPath("$HOME/.agrishield-identity")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/agrishield_dev")
	v.SetDefault("MONGO_DB_NAME", "agrishield_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "agrishield-identity")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("SESSION_SECRET", "a_very_secret_jwt_key_change_me") // CHANGE IN PRODUCTION
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", []string{"*"})

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on defaults and env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
