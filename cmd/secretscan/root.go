package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AppVersion can be set at build time:
// go build -ldflags "-X main.AppVersion=1.2.3"
var AppVersion = "1.0.0-dev"

// Exit codes, consumed by CI:
// 0 — no blocking findings
// 1 — blocking findings present (per policy)
// 2 — configuration or runtime error
const (
	exitOK      = 0
	exitBlocked = 1
	exitConfig  = 2
)

var (
	debugMode bool
	quietMode bool
	logger    *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "secretscan",
	Short:         "secretscan - hardcoded credential scanner and deployment gate",
	Version:       AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	// Optional .env for CI defaults (SECRETSCAN_ENV, SECRETSCAN_BLOCK_MODE, ...).
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "secretscan: %v\n", err)
		os.Exit(exitConfig)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "suppress progress output (for CI)")
}

// initLogger builds the shared zap logger.
func initLogger() error {
	var cfg zap.Config
	if debugMode {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	raw, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = raw.Sugar()
	return nil
}

// envDefault reads an environment variable with a fallback.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
