package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/metric-atlas/pkg/server"
	"github.com/de-tools/metric-atlas/pkg/services/config"
	"github.com/de-tools/metric-atlas/pkg/services/dashboard"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Metric Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (defaults and METRIC_ATLAS_* variables apply without one)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	calc, err := startupCalcColumns(ctx, cfg)
	if err != nil {
		return err
	}

	metrics := server.NewMetrics()
	session, err := dashboard.NewSession(dashboard.Options{
		Mode:        cfg.Dashboard.PeriodMode(),
		Metric:      cfg.Dashboard.Metric,
		Watched:     cfg.Dashboard.Watched,
		CalcColumns: calc,
		Observer:    metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard session: %w", err)
	}

	// SERVER_HOST/SERVER_PORT from .env take precedence over the config file.
	addr := cfg.Server.Addr()
	if host, port := os.Getenv("SERVER_HOST"), os.Getenv("SERVER_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}

	logger.Info().
		Str("mode", cfg.Dashboard.Mode).
		Int("calc_columns", len(calc)).
		Msg("dashboard session ready")

	api := server.NewWebAPI(server.Config{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		Dependencies: server.Dependencies{
			Session:  session,
			Decoders: decoder.NewDefaultRegistry(),
			Metrics:  metrics,
			Logger:   logger,
		},
	})

	return api.Start(ctx)
}
