// Package config loads graphhost's runtime settings: sample rate,
// vector size, log level/file, and the graph's mutation/observer queue
// depths.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// SetDefaults seeds viper with graphhost's defaults, so a config file
// only needs to override the settings it actually cares about.
func SetDefaults() {
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("logfile", "")
	viper.SetDefault("samplerate", 48000.0)
	viper.SetDefault("vector", 512)
	viper.SetDefault("mutationqueuesize", 64)
	viper.SetDefault("observerqueuesize", 256)
}

// LoadConfig reads an optional config file at path (any format viper
// supports) over the seeded defaults and validates the result. A
// missing file is not an error; a malformed one, or one with an invalid
// sample rate or vector size, is.
func LoadConfig(path string) error {
	SetDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	if viper.GetFloat64("samplerate") <= 0 {
		return errors.New("config: samplerate must be positive")
	}
	if viper.GetInt("vector") <= 0 {
		return errors.New("config: vector must be positive")
	}
	return nil
}

// SampleRate returns the configured sample rate in Hz.
func SampleRate() float64 { return viper.GetFloat64("samplerate") }

// Vector returns the configured render vector size in frames.
func Vector() int { return viper.GetInt("vector") }

// LogLevel returns the configured slog level name.
func LogLevel() string { return viper.GetString("loglevel") }

// LogFile returns the configured log file path, or "" for stdout.
func LogFile() string { return viper.GetString("logfile") }

// MutationQueueSize returns the configured deferred-mutation queue depth.
func MutationQueueSize() int { return viper.GetInt("mutationqueuesize") }

// ObserverQueueSize returns the configured observer event queue depth.
func ObserverQueueSize() int { return viper.GetInt("observerqueuesize") }
