package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/claim-audit/pkg/server"
	"github.com/de-tools/claim-audit/pkg/services/config"
	"github.com/de-tools/claim-audit/pkg/services/metrics"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve the snapshot metrics over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml",
		"Path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	generations := duckdb.NewGenerations(cfg.DataDir)
	if !generations.HasCurrent() {
		logger.Warn().Str("dir", cfg.DataDir).Msg("no snapshot generation found yet, endpoints will return 503")
	}

	explorer := metrics.NewSnapshotExplorer(generations)

	host := cfg.Server.Host
	port := cfg.Server.Port
	if envHost := os.Getenv("SERVER_HOST"); envHost != "" {
		host = envHost
	}
	if envPort := os.Getenv("SERVER_PORT"); envPort != "" {
		port = envPort
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Metrics: explorer,
		},
	})

	return api.Start()
}
