// Package cli holds the firehose command tree
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/config"
	"github.com/lixenwraith/firehose/logging"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Debug      bool
}

// NewRootCommand creates the firehose root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "firehose",
		Short: "Firehose - text as a flow of animated words",
		Long: `Firehose turns a stream of posts into word particles that drift, fall, spiral
and explode across a terminal or a websocket-connected browser.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file, skipped when missing")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "debug logging")

	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewModesCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	var envFiles []string
	if o.EnvFile != "" {
		envFiles = append(envFiles, o.EnvFile)
	}
	cfg, err := config.Load(o.ConfigPath, envFiles...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// logger builds the process logger, toStderr is false for hosts that own the terminal
// The log file is only written with --debug
func (o *RootOptions) logger(cfg *config.Config, toStderr bool) (*zap.SugaredLogger, error) {
	file := cfg.Log.File
	if !o.Debug {
		file = ""
	}
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       file,
		ShowCaller: cfg.Log.ShowCaller,
		Stderr:     toStderr,
	})
}
