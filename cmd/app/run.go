package main

import (
	"encoding/json"
	"fmt"

	"MarketPulse/internal/di"
	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/util"

	"github.com/spf13/cobra"
)

var runFlags struct {
	tickers  []string
	period   string
	interval string
	pretty   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the insights pipeline once and print the result as JSON",
	Example: `  marketpulse run --tickers AAPL,MSFT
  marketpulse run --tickers NVDA --period 6mo --pretty`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringSliceVar(&runFlags.tickers, "tickers", nil, "comma separated tickers")
	runCmd.Flags().StringVar(&runFlags.period, "period", "", "history period (default 1y)")
	runCmd.Flags().StringVar(&runFlags.interval, "interval", "", "bar interval (default 1d)")
	runCmd.Flags().BoolVar(&runFlags.pretty, "pretty", false, "indent the output")
	_ = runCmd.MarkFlagRequired("tickers")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	req := models.InsightsRequest{
		Tickers:  util.NormalizeTickers(runFlags.tickers),
		Period:   runFlags.period,
		Interval: runFlags.interval,
	}
	if err := xhttp.DefaultAndValidate(cmd.Context(), &req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	app.SetCleanup(cleanup)

	resp, err := app.RunOnce(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if runFlags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
