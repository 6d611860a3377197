package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/litescript/ls-cosmos/internal/config"
	"github.com/litescript/ls-cosmos/internal/logging"
	"github.com/litescript/ls-cosmos/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "ls-cosmos",
	Short:   "Sidereal cosmic weather in your terminal",
	Long:    "ls-cosmos computes sidereal (Lahiri) sign, nakshatra, tithi and lunar phase for the Sun, Moon, planets and lunar nodes.",
	Version: version.Version,
	RunE:    runRootDefault,

	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .ls-cosmos.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".ls-cosmos")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LS_COSMOS")
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// setup loads configuration and builds the logger.
func setup() (config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file %s", used)
	}
	return cfg, logger, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runRootDefault opens the dashboard on a terminal and prints a summary otherwise.
func runRootDefault(cmd *cobra.Command, args []string) error {
	if isTTY() {
		return runTUI(tuiCmd, nil)
	}
	return runNow(nowCmd, nil)
}
