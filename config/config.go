// Package config loads recorder settings from a YAML file and DESKREC_*
// environment variables, with sensible defaults for everything.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the recorder.
type Config struct {
	// FFmpegPath overrides encoder binary resolution when set.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// OutputDir is where recordings land when no explicit path is given.
	OutputDir string `mapstructure:"output_dir"`
	FrameRate int    `mapstructure:"framerate"`

	StartGraceSeconds   int `mapstructure:"start_grace_seconds"`
	StopGraceSeconds    int `mapstructure:"stop_grace_seconds"`
	ProbeTimeoutSeconds int `mapstructure:"probe_timeout_seconds"`

	LogLevel string `mapstructure:"log_level"`
}

func (c Config) StartGrace() time.Duration {
	return time.Duration(c.StartGraceSeconds) * time.Second
}

func (c Config) StopGrace() time.Duration {
	return time.Duration(c.StopGraceSeconds) * time.Second
}

func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file is fine; defaults and environment variables still
// apply.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("output_dir", defaultOutputDir())
	v.SetDefault("framerate", 30)
	v.SetDefault("start_grace_seconds", 2)
	v.SetDefault("stop_grace_seconds", 5)
	v.SetDefault("probe_timeout_seconds", 10)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("deskrec")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "deskrec"))
		}
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// Typed getters rather than Unmarshal: they see AutomaticEnv overrides.
	return Config{
		FFmpegPath:          v.GetString("ffmpeg_path"),
		OutputDir:           v.GetString("output_dir"),
		FrameRate:           v.GetInt("framerate"),
		StartGraceSeconds:   v.GetInt("start_grace_seconds"),
		StopGraceSeconds:    v.GetInt("stop_grace_seconds"),
		ProbeTimeoutSeconds: v.GetInt("probe_timeout_seconds"),
		LogLevel:            v.GetString("log_level"),
	}, nil
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Videos", "deskrec")
}
