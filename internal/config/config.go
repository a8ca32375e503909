// Package config handles wowscene configuration loading and management.
package config

import (
	"github.com/Faultbox/wowscene/internal/export"
	"github.com/Faultbox/wowscene/pkg/assembly"
)

// FileName is the name of the config file looked up in the working
// directory and in ConfigDir.
const FileName = "wowscene.yaml"

// Config holds all tool settings.
type Config struct {
	Import  assembly.Settings `yaml:"import"`
	Export  export.Options    `yaml:"export"`
	Logging LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: assembly.DefaultSettings(),
		Export: export.DefaultOptions(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
