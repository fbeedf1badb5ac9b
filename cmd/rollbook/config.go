// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package main

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/rollbook/rollbook/internal/auth"
)

// appConfig is the merged configuration for all subcommands: defaults, then
// the optional YAML config file, then command-line flags.
type appConfig struct {
	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Log struct {
		Format string `koanf:"format"`
	} `koanf:"log"`

	Hasher struct {
		Algorithm  string `koanf:"algorithm"`
		BcryptCost int    `koanf:"bcrypt_cost"`
		Argon2     struct {
			Time    uint32 `koanf:"time"`
			Memory  uint32 `koanf:"memory"`
			Threads uint8  `koanf:"threads"`
		} `koanf:"argon2"`
	} `koanf:"hasher"`

	BreachCheck struct {
		Enabled bool   `koanf:"enabled"`
		BaseURL string `koanf:"base_url"`
		// Timeout bounds each breach query.
		Timeout time.Duration `koanf:"timeout"`
		// FailOpen allows passwords through when the breach corpus is
		// unreachable. Defaults to false: outages reject.
		FailOpen bool `koanf:"fail_open"`
	} `koanf:"breach_check"`

	Metrics struct {
		Addr string `koanf:"addr"`
	} `koanf:"metrics"`
}

func defaultConfig() *appConfig {
	cfg := &appConfig{}
	cfg.Log.Format = "json"
	cfg.Hasher.Algorithm = auth.AlgorithmArgon2id
	cfg.Hasher.BcryptCost = auth.DefaultBcryptCost
	cfg.BreachCheck.Enabled = true
	cfg.BreachCheck.BaseURL = auth.DefaultBreachBaseURL
	cfg.BreachCheck.Timeout = auth.DefaultBreachTimeout
	cfg.Metrics.Addr = "127.0.0.1:9100"
	return cfg
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"database-url": "database.url",
	"log-format":   "log.format",
	"metrics-addr": "metrics.addr",
}

// addConfigFlags registers the flags shared by subcommands that load config.
func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file path (YAML)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-format", "", "log format (json or text)")
	flags.String("metrics-addr", "", "metrics/health HTTP address")
}

// loadConfig merges defaults, the config file (if given), and flags.
func loadConfig(flags *pflag.FlagSet) (*appConfig, error) {
	k := koanf.New(".")

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", configFile).
				Wrap(err)
		}
	}

	flagProvider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
		// Only explicitly set flags override the file and defaults; unset
		// flags would otherwise stomp them with empty strings.
		if !flags.Changed(key) {
			return "", nil
		}
		if mapped, ok := flagKeys[key]; ok {
			return mapped, value
		}
		// Flags without a config key (e.g. --config itself) are dropped.
		return "", nil
	})
	if err := k.Load(flagProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "merge flags").Wrap(err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "unmarshal config").Wrap(err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the merged configuration.
func (cfg *appConfig) Validate() error {
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log.format must be 'json' or 'text', got %q", cfg.Log.Format)
	}
	if cfg.BreachCheck.Enabled && cfg.BreachCheck.Timeout <= 0 {
		return oops.Code("CONFIG_INVALID").
			Errorf("breach_check.timeout must be positive")
	}
	return nil
}

// hasherConfig translates the hasher section for auth.NewHasher. Insecure
// variants are never allowed from this entry point.
func (cfg *appConfig) hasherConfig() auth.HasherConfig {
	return auth.HasherConfig{
		Algorithm: cfg.Hasher.Algorithm,
		Argon2: auth.Argon2Params{
			Time:    cfg.Hasher.Argon2.Time,
			Memory:  cfg.Hasher.Argon2.Memory,
			Threads: cfg.Hasher.Argon2.Threads,
		},
		BcryptCost: cfg.Hasher.BcryptCost,
	}
}

// breachChecker builds the configured breach checker, or nil when disabled.
func (cfg *appConfig) breachChecker() auth.BreachChecker {
	if !cfg.BreachCheck.Enabled {
		return nil
	}
	return auth.NewRangeClient(auth.RangeClientOptions{
		BaseURL: cfg.BreachCheck.BaseURL,
		Timeout: cfg.BreachCheck.Timeout,
	})
}
