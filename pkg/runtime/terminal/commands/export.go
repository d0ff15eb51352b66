package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/claim-audit/pkg/services/config"
	"github.com/de-tools/claim-audit/pkg/services/metrics"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
)

type ExportCmd struct {
	configPath string
	outPath    string
}

func NewExportCmd() *cobra.Command {
	ec := &ExportCmd{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current snapshot tables to an xlsx workbook",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.configPath, "config", "config.yaml", "Path to the configuration file")
	cmd.Flags().StringVar(&ec.outPath, "out", "quality_metrics.xlsx", "Output workbook path")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ec.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	explorer := metrics.NewSnapshotExplorer(duckdb.NewGenerations(cfg.DataDir))
	f, err := explorer.Workbook(ctx)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(ec.outPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", ec.outPath)
	return nil
}
