package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"OptionPilot/internal/di"
	"OptionPilot/internal/domain/models"
)

func featureETLCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "feature-etl",
		Short: "Materialize liquidity features from archived chains",
		Long: `Runs the liquidity feature job on its cron schedule, or a single pass with --once.

Examples:
  optionpilot feature-etl
  optionpilot feature-etl --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !once {
				return runApp(cmd.Context(), "feature-etl", di.InitializeFeatureETLApp)
			}

			cfg, err := loadConfig("feature-etl")
			if err != nil {
				return err
			}
			etl, cleanup, err := di.InitializeFeatureETL(cfg)
			if err != nil {
				return fmt.Errorf("feature-etl initialization failed: %w", err)
			}
			defer cleanup()

			rows, err := etl.RunWithRetry(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "materialized %d feature rows\n", rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	return cmd
}

func screenCmd() *cobra.Command {
	var (
		profile string
		capital float64
	)
	cmd := &cobra.Command{
		Use:   "screen SYMBOL",
		Short: "Screen the option chain of SYMBOL and print the ranked contracts",
		Long: `Screens one chain without starting a server. The result is printed as JSON.

Examples:
  optionpilot screen AAPL
  optionpilot screen SPY --risk-profile aggressive --capital 25000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("screen")
			if err != nil {
				return err
			}
			cfg.Log.Output = "stderr"

			screener, cleanup, err := di.InitializeScreener(cfg)
			if err != nil {
				return fmt.Errorf("screener initialization failed: %w", err)
			}
			defer cleanup()

			res, err := screener.Screen(cmd.Context(), models.ScreeningRequest{
				Symbol:      args[0],
				RiskProfile: models.RiskProfile(profile),
				CapitalUSD:  capital,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&profile, "risk-profile", "neutral", "conservative, neutral or aggressive")
	cmd.Flags().Float64Var(&capital, "capital", 10000, "capital in USD")
	return cmd
}
