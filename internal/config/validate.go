package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/validation"
)

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateProjectConfig(&config.Project); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := validateExportConfig(&config.Export); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	if config.History.Limit < 0 {
		return fmt.Errorf("history config: %w", invalid("limit %d must not be negative", config.History.Limit))
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

// ValidateProjectName rejects names that cannot be used as a store key and
// export file name.
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("project name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return invalid("project name %q must not contain path separators or '..'", name)
	}
	if strings.ContainsRune(name, 0) {
		return invalid("project name must not contain NUL")
	}

	return nil
}

func validateProjectConfig(config *ProjectConfig) error {
	return ValidateProjectName(config.Name)
}

func validateExportConfig(config *ExportConfig) error {
	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid export dir '%s': %w", config.Dir, err)
	}
	if config.CSSThreshold < 0 {
		return invalid("css_threshold %d must not be negative", config.CSSThreshold)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return invalid("port %d is not in valid range 0-65535", config.Port)
	}

	if err := validation.ValidateHost(config.Host); err != nil {
		return invalid("%v", err)
	}

	for _, origin := range config.AllowedOrigins {
		if err := validation.ValidateAllowedOrigin(origin); err != nil {
			return invalid("allowed origin %q: %v", origin, err)
		}
	}

	if config.Autosave != "" {
		if _, err := cron.ParseStandard(config.Autosave); err != nil {
			return invalid("autosave %q is not a valid cron spec: %v", config.Autosave, err)
		}
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid watch path '%s': %w", path, err)
		}
	}
	if config.Debounce < 0 {
		return invalid("debounce %s must not be negative", config.Debounce)
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("unknown log level %q", config.Level)
	}
	switch strings.ToLower(config.Format) {
	case "text", "json":
	default:
		return invalid("unknown log format %q (want text or json)", config.Format)
	}

	return nil
}

// validatePath validates a relative file path for security
func validatePath(path string) error {
	if err := validation.ValidatePath(path); err != nil {
		return invalid("%v", err)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.NewConfigError(errors.CodeInvalidConfig, fmt.Sprintf(format, args...))
}
