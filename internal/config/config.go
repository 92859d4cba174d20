package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the application reads at start-up.
type Config struct {
	Database struct {
		Path        string        `mapstructure:"path"`
		BusyTimeout time.Duration `mapstructure:"busy_timeout"`
		JournalMode string        `mapstructure:"journal_mode"`
		Synchronous string        `mapstructure:"synchronous"`
	} `mapstructure:"database"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// New returns a viper instance with defaults and environment binding applied.
// Keys may be overridden with SQLTABLE_DATABASE_PATH and friends.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("database.path", "sqltable.db")
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.journal_mode", "WAL")
	v.SetDefault("database.synchronous", "NORMAL")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("sqltable")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("database.path must not be empty")
	}
	return &cfg, nil
}

// LoadFile is Load with a fresh viper instance.
func LoadFile(path string) (*Config, error) {
	return Load(New(), path)
}
