// Package cmd provides the command-line interface for webbuilder.
//
// Configuration System:
//
//	Values are resolved with the following precedence:
//	1. Command-line flags (--project, --storage-driver, --port, etc.)
//	2. Individual environment variables (WEBBUILDER_STORAGE_DSN, etc.)
//	3. The file named by --config, or by WEBBUILDER_CONFIG_FILE
//	4. .webbuilder.yml in the working directory
//	5. Built-in defaults
//
// Environment Variables:
//
//	WEBBUILDER_CONFIG_FILE: Path to custom configuration file
//	WEBBUILDER_PROJECT_NAME: Project the commands act on
//	WEBBUILDER_STORAGE_DRIVER: memory, sqlite, postgres, mysql or mongo
//	WEBBUILDER_STORAGE_DSN: Connection string or sqlite file
//	And many more following the WEBBUILDER_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/webbuilder/internal/errors"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webbuilder",
	Short: "Assemble websites from a catalog of HTML section templates",
	Long: `webbuilder assembles multi-page websites from a catalog of pre-made HTML
section templates and exports them as static HTML, CSS and project JSON.

Key Features:
  • Catalog of navbars, heroes, features, pricing, footers and more
  • Pages with per-page element lists and undo/redo history
  • Per-element props, styles and tablet/mobile overrides
  • Live preview server with websocket reload
  • Export to HTML, CSS and JSON, plus a watch mode that re-exports
  • MCP server so AI agents can build pages

Quick Start:
  webbuilder init                          Write a .webbuilder.yml
  webbuilder catalog list                  Browse the templates
  webbuilder element add hero-01           Add a section to the active page
  webbuilder serve                         Preview in the browser
  webbuilder export                        Write dist/<project>.html

Command Aliases (for faster typing):
  catalog (c), project (p), page (pg), element (el), export (x), serve (s), watch (w)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}

	return err
}

// reportError prints rejected user input as a one-line notice and anything
// else as an error with its cause chain.
func reportError(w io.Writer, err error) {
	if be, ok := errors.AsBuilderError(err); ok && errors.IsUserError(err) {
		fmt.Fprintln(w, be.Message)
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .webbuilder.yml, can also use WEBBUILDER_CONFIG_FILE env var)")
	flags.StringP("project", "P", "", "project to work on (default my-website)")
	flags.String("page", "", "page id or path to act on (default the active page)")
	flags.String("storage-driver", "", "storage backend (memory, sqlite, postgres, mysql, mongo)")
	flags.String("storage-dsn", "", "storage connection string or sqlite file")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	viper.BindPFlag("project.name", flags.Lookup("project"))
	viper.BindPFlag("project.page", flags.Lookup("page"))
	viper.BindPFlag("storage.driver", flags.Lookup("storage-driver"))
	viper.BindPFlag("storage.dsn", flags.Lookup("storage-dsn"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. WEBBUILDER_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .webbuilder.yml in current directory
//
// Every key can also be set through the environment with the WEBBUILDER_
// prefix, dots replaced by underscores (WEBBUILDER_SERVER_PORT=3000).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("WEBBUILDER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".webbuilder")
	}

	viper.SetEnvPrefix("WEBBUILDER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
