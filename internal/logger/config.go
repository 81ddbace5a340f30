package logger

import (
	"os"
	"strconv"
)

// Config holds logging configuration. It is read as the logging section of
// the client settings file.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// DefaultConfig logs INFO and above to a rotated file only; the terminal
// belongs to the chat.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: false,
		ConsoleFormat:  "text",
		FileEnabled:    true,
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 3,
		FileMaxAgeDays: 30,
	}
}

// ApplyEnv overrides cfg from DMCONNECT_LOG_* variables.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("DMCONNECT_LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("DMCONNECT_LOG_FILE"); v != "" {
		cfg.FilePath = v
		cfg.FileEnabled = true
	}
	if v := os.Getenv("DMCONNECT_LOG_CONSOLE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.ConsoleEnabled = enabled
		}
	}
}
