package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/claim-audit/pkg/runtime/terminal/export"
	"github.com/de-tools/claim-audit/pkg/services/config"
	"github.com/de-tools/claim-audit/pkg/services/metrics"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
)

type CompareCmd struct {
	configPath string
	reporter   *export.Reporter
}

func NewCompareCmd(reporter *export.Reporter) *cobra.Command {
	cc := &CompareCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Print the metric trend against the previous snapshot generation",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.configPath, "config", "config.yaml", "Path to the configuration file")

	return cmd
}

func (cc *CompareCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cc.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	explorer := metrics.NewSnapshotExplorer(duckdb.NewGenerations(cfg.DataDir))
	rows, err := explorer.Comparison(ctx)
	if err != nil {
		return fmt.Errorf("failed to read comparison: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No comparison available yet; run build first.")
		return nil
	}
	return cc.reporter.HandleComparison(rows)
}
