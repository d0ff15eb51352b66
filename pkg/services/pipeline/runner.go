// Package pipeline runs one full evaluation cycle: load the ingested
// records, evaluate the rule catalogue, persist the snapshot into a fresh
// generation, diff it against the previous one and promote it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/services/quality"
	"github.com/de-tools/claim-audit/pkg/services/semantic"
	"github.com/de-tools/claim-audit/pkg/services/trend"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
	"github.com/de-tools/claim-audit/pkg/store/duckdb/input"
	"github.com/de-tools/claim-audit/pkg/store/duckdb/snapshot"
)

type Runner struct {
	inputPath   string
	generations duckdb.Generations
	settings    quality.Settings
	embedder    semantic.Embedder
}

// NewRunner wires a build run. A nil embedder is allowed; the semantic
// detector is then reported as skipped.
func NewRunner(inputPath string, generations duckdb.Generations, settings quality.Settings, embedder semantic.Embedder) *Runner {
	return &Runner{
		inputPath:   inputPath,
		generations: generations,
		settings:    settings,
		embedder:    embedder,
	}
}

// Run executes the cycle. The previous generation stays authoritative until
// the new one is completely written; any failure before promotion leaves the
// slots untouched.
func (r *Runner) Run(ctx context.Context) (*domain.Snapshot, []domain.ComparisonRow, error) {
	logger := zerolog.Ctx(ctx)

	orders, positions, err := r.loadInput(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().
		Int("orders", len(orders.Orders)).
		Int("positions", len(positions.Positions)).
		Msg("input loaded")

	aggregator, err := quality.NewAggregator(r.settings, r.embedder)
	if err != nil {
		return nil, nil, err
	}
	snap, err := aggregator.Evaluate(ctx, orders, positions)
	if err != nil {
		return nil, nil, err
	}

	previous, err := r.previousScalars(ctx)
	if err != nil {
		return nil, nil, err
	}
	comparison := trend.Compare(snap.Scalars, previous)

	if err := r.persist(ctx, snap, comparison); err != nil {
		if abortErr := r.generations.Abort(); abortErr != nil {
			logger.Error().Err(abortErr).Msg("failed to discard aborted build")
		}
		return nil, nil, err
	}

	if err := r.generations.Promote(); err != nil {
		return nil, nil, err
	}
	logger.Info().Str("path", r.generations.CurrentPath()).Msg("snapshot promoted")

	return snap, comparison, nil
}

func (r *Runner) loadInput(ctx context.Context) (domain.OrderSet, domain.PositionSet, error) {
	db, err := duckdb.OpenReadOnly(r.inputPath)
	if err != nil {
		return domain.OrderSet{}, domain.PositionSet{}, fmt.Errorf("open input database: %w", err)
	}
	defer db.Close()

	st, err := input.NewStore(db, r.settings.Rules.DiscountKeywords)
	if err != nil {
		return domain.OrderSet{}, domain.PositionSet{}, err
	}
	return st.Load(ctx)
}

// previousScalars reads the metric table of the still-current generation.
// A missing generation is a first run, not an error.
func (r *Runner) previousScalars(ctx context.Context) (map[string]float64, error) {
	if !r.generations.HasCurrent() {
		return nil, nil
	}
	db, err := duckdb.OpenReadOnly(r.generations.CurrentPath())
	if err != nil {
		return nil, fmt.Errorf("open previous generation: %w", err)
	}
	defer db.Close()

	st, err := snapshot.NewStore(db)
	if err != nil {
		return nil, err
	}
	return st.Scalars(ctx)
}

func (r *Runner) persist(ctx context.Context, snap *domain.Snapshot, comparison []domain.ComparisonRow) error {
	buildPath, err := r.generations.BeginBuild()
	if err != nil {
		return err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: buildPath})
	if err != nil {
		return fmt.Errorf("create build database: %w", err)
	}
	defer db.Close()

	st, err := snapshot.NewStore(db)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	if err := st.SaveComparison(ctx, comparison); err != nil {
		return err
	}
	return nil
}
