package main

import (
	"fmt"

	"MarketPulse/internal/di"
	"MarketPulse/pkg/config"
	applogger "MarketPulse/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, job workers, scheduler and Kafka consumer",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	app.SetCleanup(cleanup)

	app.Logger().Info("starting marketpulse",
		applogger.Int("port", cfg.Server.Port),
		applogger.Bool("redis", cfg.Redis.Enabled),
		applogger.Bool("kafka", cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", cfg.ClickHouse.Enabled),
		applogger.String("llm_provider", cfg.LLM.Provider))

	return app.Run(cmd.Context())
}
