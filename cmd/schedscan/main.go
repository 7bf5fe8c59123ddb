package main

import (
	"errors"
	"io/fs"
	"os"
	_ "time/tzdata"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"schedscan/internal/config"
	appLog "schedscan/internal/log"
)

const version = "0.1.0"

var (
	cfg        *config.Config
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "schedscan",
	Short:         "Extract weekly class schedules from HTML pages",
	Long:          "Recovers calendar events from schedule pages of unknown layout (tables, cards or plain text) and exports them as JSON or iCalendar.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		appLog.Init(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
}

// loadConfig reads --config. An explicitly named file is created with
// defaults on first run; the implicit default path is only read if present.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return config.DefaultConfig(), nil
		}
	}
	c, err := config.Load(configPath)
	if err != nil {
		return nil, eris.Wrap(err, "load config")
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "schedscan.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info or error (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		appLog.Error("command failed", err)
		appLog.Sync()
		os.Exit(1)
	}
}
