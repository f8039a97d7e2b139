package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eatopia/internal/config"
	"eatopia/internal/logger"
)

const defaultConfigPath = "config.yaml"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the eatopia CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "eatopia",
		Short:         "Eatopia food-ordering webhook",
		Long:          "Fulfillment webhook for a conversational food-ordering agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))

	return cmd
}

// loadConfig reads the config file. A missing default file falls back to the
// built-in defaults; a missing file named on the command line is an error.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

func (o *RootOptions) newLogger(service string) *logger.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return logger.NewWithWriter(service, os.Stdout, level)
}

// errorf is shorthand for command failures that wrap a cause
func errorf(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
