// Package config provides configuration management for lipsyncd
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Whisper  WhisperConfig  `mapstructure:"whisper"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// WhisperConfig configures the speech recognizer
type WhisperConfig struct {
	Provider    string        `mapstructure:"provider"` // local, server
	InstallPath string        `mapstructure:"install_path"`
	Model       string        `mapstructure:"model"`
	ServerURL   string        `mapstructure:"server_url"` // for the server provider
	Timeout     time.Duration `mapstructure:"timeout"`
	Threads     int           `mapstructure:"threads"`  // 0 leaves the binary's default
	Language    string        `mapstructure:"language"` // empty leaves the binary's default
}

// PipelineConfig configures transcript-to-viseme conversion
type PipelineConfig struct {
	MergeGap time.Duration `mapstructure:"merge_gap"` // max gap between fragments of one word
}

// JournalConfig configures the processed-job store
type JournalConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".lipsyncd")

	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			MaxUploadMB: 25,
		},
		Whisper: WhisperConfig{
			Provider:    "local",
			InstallPath: filepath.Join(dataDir, "whisper.cpp"),
			Model:       "base.en",
			ServerURL:   "http://localhost:8080",
			Timeout:     5 * time.Minute,
			Threads:     0,
			Language:    "",
		},
		Pipeline: PipelineConfig{
			MergeGap: 100 * time.Millisecond,
		},
		Journal: JournalConfig{
			Enabled:   true,
			Path:      filepath.Join(dataDir, "journal.db"),
			Retention: 168 * time.Hour,
		},
		Logging: LoggingConfig{
			Dir:     filepath.Join(dataDir, "logs"),
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return cfg, err
	}

	configDir := filepath.Join(homeDir, ".lipsyncd")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("LIPSYNCD")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(homeDir, ".lipsyncd")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	viper.Set("server", cfg.Server)
	viper.Set("whisper", cfg.Whisper)
	viper.Set("pipeline", cfg.Pipeline)
	viper.Set("journal", cfg.Journal)
	viper.Set("logging", cfg.Logging)

	configPath := filepath.Join(configDir, "config.yaml")
	return viper.WriteConfigAs(configPath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".lipsyncd"), nil
}
