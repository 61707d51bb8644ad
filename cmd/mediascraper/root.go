package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mediascraper/internal/config"
)

var (
	flagEnvFile  string
	flagLogLevel string
)

// cfg and logger are set by loadConfig before any subcommand runs.
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mediascraper",
	Short: "Extract media URLs from social-media posts",
	Long: `mediascraper resolves a TikTok, Instagram, Facebook, Snapchat or Twitter/X post
URL to the media behind it, either as a flat list of URLs or as a structured
content/author/media object.`,
	SilenceUsage:       true,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: syncLogger,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Env-format configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override LOG_LEVEL: debug | info | warn | error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
}

// loadConfig loads configuration (defaults < file < environment < flags) and builds the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadFile(flagEnvFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logger, err = newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}

// newLogger returns a development logger for debug and a production one otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func syncLogger(cmd *cobra.Command, args []string) error {
	if logger != nil {
		_ = logger.Sync()
	}
	return nil
}
