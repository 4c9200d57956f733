package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/webbuilder/internal/config"
	"github.com/conneroisu/webbuilder/internal/errors"
)

const configFileName = ".webbuilder.yml"

var initCmd = &cobra.Command{
	Use:     "init [project-name]",
	Aliases: []string{"i"},
	Short:   "Write a .webbuilder.yml with the default settings",
	Long: `Write a .webbuilder.yml into the current directory holding every setting
with its default value, and create the watch directories.

Examples:
  webbuilder init
  webbuilder init shop --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing "+configFileName)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if len(args) == 1 {
		if err := config.ValidateProjectName(args[0]); err != nil {
			return err
		}
		cfg.Project.Name = args[0]
	}

	if _, err := os.Stat(configFileName); err == nil && !initForce {
		return errors.NewConflictError("ERR_CONFIG_EXISTS", configFileName+" already exists (use --force to overwrite)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError("encode configuration", err)
	}
	if err := os.WriteFile(configFileName, data, 0o644); err != nil {
		return errors.NewIOError("write "+configFileName, err)
	}
	for _, dir := range cfg.Watch.Paths {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewIOError("create "+dir, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for project %s\n", configFileName, cfg.Project.Name)
	return nil
}
