package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/claim-audit/pkg/runtime/terminal/export"
	"github.com/de-tools/claim-audit/pkg/services/config"
	"github.com/de-tools/claim-audit/pkg/services/pipeline"
	"github.com/de-tools/claim-audit/pkg/services/semantic"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
)

type BuildCmd struct {
	configPath string
	reporter   *export.Reporter
}

func NewBuildCmd(reporter *export.Reporter) *cobra.Command {
	bc := &BuildCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Evaluate the current delivery and persist a new snapshot generation",
		RunE:  bc.run,
	}

	cmd.Flags().StringVar(&bc.configPath, "config", "config.yaml", "Path to the configuration file")

	return cmd
}

func (bc *BuildCmd) run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(bc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var embedder semantic.Embedder
	if cfg.Semantic.Enabled && cfg.Semantic.APIKey != "" {
		genaiEmbedder, err := semantic.NewGenAIEmbedder(ctx, cfg.Semantic.APIKey, cfg.Semantic.Model)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		defer func() {
			if err := genaiEmbedder.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close embedder")
			}
		}()
		embedder = genaiEmbedder
	} else {
		logger.Warn().Msg("semantic detector disabled, no embedding key configured")
	}

	runner := pipeline.NewRunner(
		cfg.InputDB,
		duckdb.NewGenerations(cfg.DataDir),
		cfg.QualitySettings(),
		embedder,
	)

	snap, _, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return bc.reporter.HandleSummary(snap)
}
