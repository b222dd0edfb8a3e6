// Package config loads CLI configuration from flags, environment, and an
// optional config file.
package config

import (
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/agentbay/agentbay-go/pkg/agentbay/errors"
)

// Config holds the settings shared by every CLI command.
type Config struct {
	APIKey   string `mapstructure:"api_key"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Verbose  bool   `mapstructure:"verbose"`
}

// Load reads configuration with the following precedence: flags bound by the
// caller, then AGENTBAY_* environment variables, then ~/.agentbay.yaml.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigName(".agentbay")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetEnvPrefix("agentbay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register the keys so env-only values survive Unmarshal
	v.SetDefault("api_key", "")
	v.SetDefault("region", "")
	v.SetDefault("endpoint", "")
	v.SetDefault("verbose", false)

	// The config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "failed to parse configuration", err)
	}
	return &cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return apperrors.New(apperrors.ErrCodeAuthFailed,
			"API key is required; set AGENTBAY_API_KEY or pass --api-key", nil)
	}
	return nil
}
