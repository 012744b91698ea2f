package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "market",
		Short:        "NFT marketplace settlement engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted scenario across every sale mechanism",
		RunE:  runDemo,
	}

	demoCmd.Flags().String("settlements-out", "./data/settlements.jsonl", "settlement records JSONL path")
	demoCmd.Flags().String("snapshots-out", "./data/pool_snapshots.jsonl", "pool snapshots JSONL path")
	demoCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for record storage")
	demoCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(demoCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-read settlement records and verify fund conservation",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input settlements JSONL")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
