package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/custody"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome      string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "custodyd",
	Short:        "Multi-owner treasury service",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), custody.Version())
	},
}

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".custodyd")
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", defaultHome, "directory to store files under")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, error), overrides the configuration")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (plain, json), overrides the configuration")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration from the home directory and applies
// the command line overrides.
func loadConfig() (Config, error) {
	conf, err := LoadConfig(flagHome)
	if err != nil {
		return conf, err
	}
	if flagLogLevel != "" {
		conf.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		conf.Log.Format = flagLogFormat
	}
	return conf, conf.Validate()
}

func newLogger(conf LogConfig) (log.Logger, error) {
	var logger log.Logger
	if conf.Format == "json" {
		logger = log.NewTMJSONLogger(log.NewSyncWriter(os.Stdout))
	} else {
		logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	}
	opt, err := log.AllowLevel(conf.Level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt).With("module", "custody"), nil
}
