package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutewatch/config"
	"github.com/kilianp07/commutewatch/infra/logger"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "commutewatch",
	Short:        "Transit leave-now and severe-delay monitor",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON); defaults and COMMUTE_ env vars apply without it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Log.Validate(); err != nil {
			return nil, err
		}
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}
