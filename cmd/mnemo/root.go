package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/avasile/mnemo/internal/config"
	"github.com/avasile/mnemo/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "mnemo — conversation-memory orchestration service",
	Long:  `mnemo serves model-backed chat over durable conversations and long-term memory recall.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
