package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"OptionPilot/internal/di"
	"OptionPilot/pkg/config"
	"OptionPilot/pkg/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "optionpilot",
		Short:        "Options screening and recommendation services",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")

	root.AddCommand(
		serviceCmd("market-data", "Serve cached option chains and quotes", di.InitializeMarketData),
		serviceCmd("options-analytics", "Serve contract screening", di.InitializeOptionsAnalytics),
		serviceCmd("recommendation", "Serve the recommendation engine", di.InitializeRecommendation),
		serviceCmd("signals", "Serve signal snapshots", di.InitializeSignals),
		serviceCmd("rationale", "Serve recommendation rationales", di.InitializeRationale),
		serviceCmd("ingest", "Stream quotes into Kafka", di.InitializeIngest),
		serviceCmd("gateway", "Route end-to-end recommendation requests", di.InitializeGateway),
		featureETLCmd(),
		screenCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type appInjector func(*config.Config) (*server.App, func(), error)

func loadConfig(service string) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	cfg.Log.Service = service
	return cfg, nil
}

func runApp(ctx context.Context, service string, inject appInjector) error {
	cfg, err := loadConfig(service)
	if err != nil {
		return err
	}
	app, cleanup, err := inject(cfg)
	if err != nil {
		return fmt.Errorf("%s initialization failed: %w", service, err)
	}
	defer cleanup()

	return app.Run(ctx)
}

func serviceCmd(name, short string, inject appInjector) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd.Context(), name, inject)
		},
	}
}
