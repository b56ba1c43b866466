// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Entry   EntryConfig   `toml:"entry"`
	Stats   StatsConfig   `toml:"stats"`
	Offload OffloadConfig `toml:"offload"`
}

// EntryConfig maps game entry settings.
type EntryConfig struct {
	Mode    *string `toml:"mode"`
	Ball    *string `toml:"ball"`
	League  *string `toml:"league"`
	Pattern *string `toml:"pattern"`
}

// StatsConfig maps stats settings.
type StatsConfig struct {
	ExcludePractice *bool `toml:"exclude-practice"`
	CurveWindow     *int  `toml:"curve-window"`
	Last            *int  `toml:"last"`
}

// OffloadConfig maps background worker settings. Durations use time.ParseDuration syntax.
type OffloadConfig struct {
	StatsTimeout   *string `toml:"stats-timeout"`
	ProcessTimeout *string `toml:"process-timeout"`
}

// Timeouts returns the configured worker timeouts; unset values are zero.
func (o OffloadConfig) Timeouts() (stats, process time.Duration, err error) {
	if stats, err = parseDuration("offload.stats-timeout", o.StatsTimeout); err != nil {
		return 0, 0, err
	}
	if process, err = parseDuration("offload.process-timeout", o.ProcessTimeout); err != nil {
		return 0, 0, err
	}
	return stats, process, nil
}

func parseDuration(key string, value *string) (time.Duration, error) {
	if value == nil || *value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Entry.Mode != nil {
		switch *cfg.Entry.Mode {
		case "digit", "pins":
		default:
			return FileConfig{}, fmt.Errorf("invalid entry.mode %q", *cfg.Entry.Mode)
		}
	}
	if _, _, err := cfg.Offload.Timeouts(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Template is written by `tenpin config` when no config file exists yet.
const Template = `# tenpin configuration

[entry]
# mode = "digit"        # "digit" or "pins"
# ball = "Phaze II"
# league = "Tuesday Mixed"
# pattern = "House Shot"

[stats]
# exclude-practice = false
# curve-window = 10
# last = 0

[offload]
# stats-timeout = "30s"
# process-timeout = "10s"
`
