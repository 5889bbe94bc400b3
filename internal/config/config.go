package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jbrannst/mcp-konnect-portal/internal/api"
	"github.com/jbrannst/mcp-konnect-portal/internal/konnect"
)

// Config holds the complete application configuration
type Config struct {
	API     api.Config     `mapstructure:"api"`
	Konnect konnect.Config `mapstructure:"konnect"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from config file when one is present
	configFile := os.Getenv("KONNECT_CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/config.yaml"
	}
	v.SetConfigFile(configFile)

	// Read from environment variables prefixed with KONNECT_
	v.SetEnvPrefix("KONNECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credential keys keep their short, documented names rather than the
	// doubled KONNECT_KONNECT_* form AutomaticEnv would produce.
	bindings := map[string]string{
		"konnect.access_token":       "KONNECT_ACCESS_TOKEN",
		"konnect.region":             "KONNECT_REGION",
		"konnect.developer_username": "KONNECT_DEVELOPER_USERNAME",
		"konnect.developer_password": "KONNECT_DEVELOPER_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is not required if environment variables are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.listen_address", ":8080")
	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.read_timeout", 30*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("api.idle_timeout", 90*time.Second)

	// API rate limiting defaults
	v.SetDefault("api.rate_limit.enabled", true)
	v.SetDefault("api.rate_limit.limit", 100)
	v.SetDefault("api.rate_limit.burst", 150)
	v.SetDefault("api.rate_limit.expiration", 1*time.Hour)

	// Konnect defaults
	v.SetDefault("konnect.access_token", "")
	v.SetDefault("konnect.region", "us")
	v.SetDefault("konnect.developer_username", "")
	v.SetDefault("konnect.developer_password", "")
	v.SetDefault("konnect.request_timeout", 30*time.Second)
}
