// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

const (
	configName = "laundry-analytics"
	envPrefix  = "LAUNDRY_ANALYTICS"
)

// loadConfig layers the built-in defaults, the config file and
// LAUNDRY_ANALYTICS_* environment variables, then validates the result.
// An empty cfgFile searches the working directory and
// ~/.config/laundry-analytics; a missing file there is not an error. It
// returns the config file used, if any.
func loadConfig(cfgFile string) (types.Config, string, error) {
	cfg := types.DefaultConfig()

	defaults, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, "", fmt.Errorf("encoding default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return cfg, "", fmt.Errorf("loading default config: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	used := ""
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return cfg, "", fmt.Errorf("reading config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, used, fmt.Errorf("decoding config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, used, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, used, nil
}
