package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pavelc4/aether-media-bot/config"
	"github.com/pavelc4/aether-media-bot/internal/app"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "aether-media-bot",
		Short:         "Telegram bot that downloads videos and music from YouTube, VK, Rutube and TikTok",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				logger.Error("Failed to load config", "error", err)
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			logger.Setup(cfg.LogLevel, cfg.LogFile)
			logger.Info("Starting Aether Media Bot", "version", version)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				logger.Error("Failed to initialize application", "error", err)
				return err
			}
			if err := a.Run(ctx); err != nil {
				logger.Error("Bot stopped with error", "error", err)
				return err
			}
			logger.Info("Shutdown complete")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	root.SetContext(context.Background())
	return root
}
