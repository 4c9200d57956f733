// Package config provides configuration management for webbuilder using
// Viper for loading from files, environment variables, and command-line flags.
//
// Values come, in order of precedence, from flags, WEBBUILDER_ environment
// variables, the --config file (or WEBBUILDER_CONFIG_FILE), .webbuilder.yml
// in the working directory, and finally the defaults applied by Load.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/webbuilder/internal/storage"
)

// Config is the complete application configuration.
type Config struct {
	Project ProjectConfig  `mapstructure:"project" yaml:"project"`
	Storage storage.Config `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig   `mapstructure:"export" yaml:"export"`
	History HistoryConfig  `mapstructure:"history" yaml:"history"`
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Watch   WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Catalog CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

type ProjectConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Page is the id of the page commands act on. Empty means the
	// workspace's active page.
	Page string `mapstructure:"page" yaml:"page"`
}

type ExportConfig struct {
	Dir          string `mapstructure:"dir" yaml:"dir"`
	CSSThreshold int    `mapstructure:"css_threshold" yaml:"css_threshold"`
}

type HistoryConfig struct {
	// Limit caps the snapshots kept per page. 0 keeps all of them.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// Autosave is a cron spec for saving the served workspace. Empty disables it.
	Autosave string `mapstructure:"autosave" yaml:"autosave"`
}

type WatchConfig struct {
	Paths    []string      `mapstructure:"paths" yaml:"paths"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type CatalogConfig struct {
	// Extra is a YAML file of templates appended to the built-in catalog.
	Extra string `mapstructure:"extra" yaml:"extra"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default values.
const (
	DefaultProjectName  = "my-website"
	DefaultDSN          = "webbuilder.db"
	DefaultDatabase     = "webbuilder"
	DefaultCollection   = "kv"
	DefaultExportDir    = "dist"
	DefaultCSSThreshold = 50
	DefaultHost         = "localhost"
	DefaultPort         = 8080
	DefaultAutosave     = "@every 30s"
	DefaultDebounce     = 300 * time.Millisecond
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{Name: DefaultProjectName},
		Storage: storage.Config{
			Driver:     storage.DriverSQLite,
			DSN:        DefaultDSN,
			Database:   DefaultDatabase,
			Collection: DefaultCollection,
		},
		Export: ExportConfig{Dir: DefaultExportDir, CSSThreshold: DefaultCSSThreshold},
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort, Autosave: DefaultAutosave},
		Watch:  WatchConfig{Paths: []string{"projects"}, Debounce: DefaultDebounce},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from the global viper instance.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	def := Default()

	if config.Project.Name == "" {
		config.Project.Name = def.Project.Name
	}

	if config.Storage.Driver == "" {
		config.Storage.Driver = def.Storage.Driver
	}
	if config.Storage.DSN == "" && config.Storage.Driver == storage.DriverSQLite {
		config.Storage.DSN = def.Storage.DSN
	}
	if config.Storage.Database == "" {
		config.Storage.Database = def.Storage.Database
	}
	if config.Storage.Collection == "" {
		config.Storage.Collection = def.Storage.Collection
	}

	if config.Export.Dir == "" {
		config.Export.Dir = def.Export.Dir
	}
	if !viper.IsSet("export.css_threshold") {
		config.Export.CSSThreshold = def.Export.CSSThreshold
	}

	if config.Server.Host == "" {
		config.Server.Host = def.Server.Host
	}
	if !viper.IsSet("server.port") {
		config.Server.Port = def.Server.Port
	}
	// An explicitly empty autosave spec turns autosave off.
	if !viper.IsSet("server.autosave") {
		config.Server.Autosave = def.Server.Autosave
	}

	// Handle slices set via viper as comma-separated strings.
	if viper.IsSet("watch.paths") && len(config.Watch.Paths) == 0 {
		config.Watch.Paths = viper.GetStringSlice("watch.paths")
	}
	if len(config.Watch.Paths) == 0 {
		config.Watch.Paths = def.Watch.Paths
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = def.Watch.Debounce
	}
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}

	if config.Log.Level == "" {
		config.Log.Level = def.Log.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = def.Log.Format
	}
}

// Addr returns the host:port the preview server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
