// Package quality runs the full rule catalogue plus both outlier detectors
// over one ingestion cycle and assembles the result into a snapshot.
package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/services/outlier"
	"github.com/de-tools/claim-audit/pkg/services/rules"
	"github.com/de-tools/claim-audit/pkg/services/semantic"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Settings bundles the configuration surface of all checks.
type Settings struct {
	Rules         rules.Settings
	Outlier       outlier.Settings
	TradeKeywords []outlier.TradeKeywords
	Semantic      semantic.Settings
}

func DefaultSettings() Settings {
	return Settings{
		Rules:         rules.DefaultSettings(),
		Outlier:       outlier.DefaultSettings(),
		TradeKeywords: outlier.DefaultTradeKeywords(),
		Semantic:      semantic.DefaultSettings(),
	}
}

type Aggregator struct {
	settings Settings
	detector *semantic.Detector // nil when no embedder is configured
	now      func() time.Time
}

// NewAggregator builds the evaluation pipeline. A nil embedder disables the
// semantic detector; the snapshot then records it as skipped rather than
// silently reporting zero mismatches.
func NewAggregator(settings Settings, embedder semantic.Embedder) (*Aggregator, error) {
	a := &Aggregator{settings: settings, now: time.Now}
	if embedder != nil {
		detector, err := semantic.NewDetector(embedder, settings.Semantic)
		if err != nil {
			return nil, fmt.Errorf("create semantic detector: %w", err)
		}
		a.detector = detector
	}
	return a, nil
}

// Evaluate runs every applicable rule over the given record sets. Rules are
// independent pure functions and run in parallel; the rollup counters are
// derived strictly afterwards. A failing embedding backend only degrades the
// semantic result, never the run.
func (a *Aggregator) Evaluate(
	ctx context.Context,
	orders domain.OrderSet,
	positions domain.PositionSet,
) (*domain.Snapshot, error) {
	logger := zerolog.Ctx(ctx)
	applicable := rules.CheckSchema(ctx, orders, positions)

	snap := &domain.Snapshot{
		CreatedAt:      a.now(),
		Scalars:        make(map[string]float64),
		SemanticStatus: domain.SemanticStatusSkipped,
	}

	var semanticErr error

	g, gctx := errgroup.WithContext(ctx)

	if applicable.Applies(rules.RuleAgreedOverClaimedOrders) {
		g.Go(func() error {
			snap.OrderAgreedOverClaimed = rules.AgreedOverClaimedOrders(orders.Orders)
			return nil
		})
	}
	if applicable.Applies(rules.RuleAgreedOverClaimedPositions) {
		g.Go(func() error {
			snap.PositionAgreedOverClaimed = rules.AgreedOverClaimedPositions(positions.Positions)
			return nil
		})
	}
	if applicable.Applies(rules.RuleDepreciation) {
		g.Go(func() error {
			snap.Depreciation = rules.DepreciationConsistency(orders.Orders)
			return nil
		})
	}
	if applicable.Applies(rules.RuleHighValue) {
		g.Go(func() error {
			snap.HighValue = rules.HighValueOrders(orders.Orders, a.settings.Rules.HighValueThreshold)
			return nil
		})
	}
	if applicable.Applies(rules.RuleProforma) {
		g.Go(func() error {
			snap.Proforma = rules.ProformaOrders(orders.Orders, a.settings.Rules.ProformaLower, a.settings.Rules.ProformaUpper)
			return nil
		})
	}
	if applicable.Applies(rules.RuleSignTriple) {
		g.Go(func() error {
			snap.SignTriple = rules.SignTriple(orders.Orders)
			return nil
		})
	}
	if applicable.Applies(rules.RulePositionSigns) {
		g.Go(func() error {
			snap.PositionSigns = rules.PositionSigns(positions.Positions)
			return nil
		})
	}
	if applicable.Applies(rules.RuleDiscount) {
		g.Go(func() error {
			snap.Discount = rules.DiscountCheckDetails(positions.Positions, a.settings.Rules.TopErrorSources)
			return nil
		})
	}
	if applicable.Applies(rules.RuleReconciliation) {
		g.Go(func() error {
			snap.Reconciliation = rules.ReconcileOrderPositions(orders.Orders, positions.Positions)
			return nil
		})
	}
	if applicable.Applies(rules.RuleEmptyOrders) {
		g.Go(func() error {
			snap.EmptyOrders = rules.EmptyOrders(orders.Orders)
			return nil
		})
	}
	if applicable.Applies(rules.RuleTestData) {
		g.Go(func() error {
			snap.TestData = rules.TestDataDetails(orders.Orders)
			return nil
		})
	}
	if applicable.Applies(rules.RuleUniqueness) {
		g.Go(func() error {
			snap.Uniqueness = rules.CheckUniqueness(orders.Orders, positions.Positions)
			return nil
		})
	}
	if applicable.Applies(rules.RulePositionsOverTime) {
		g.Go(func() error {
			snap.PositionsOverTime = rules.PositionsOverTime(orders.Orders, positions.Positions)
			return nil
		})
	}

	g.Go(func() error {
		snap.NullRatiosOrders = rules.NullRatiosOrders(orders.Orders)
		snap.NullRatiosPositions = rules.NullRatiosPositions(positions.Positions)
		return nil
	})

	g.Go(func() error {
		stats := outlier.TradeDistribution(orders.Orders, a.settings.Outlier)
		flagged := outlier.Outliers(stats)
		outlier.AnnotateKeywords(flagged, a.settings.TradeKeywords)
		snap.CraftsmanOutliers = flagged
		return nil
	})

	if a.detector != nil {
		g.Go(func() error {
			mismatches, err := a.detector.Detect(gctx, orders.Orders)
			if err != nil {
				// Embedding failures are fatal to this detector only.
				semanticErr = err
				return nil
			}
			snap.SemanticMismatches = mismatches
			snap.SemanticStatus = domain.SemanticStatusOK
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rule evaluation: %w", err)
	}

	if semanticErr != nil {
		snap.SemanticStatus = domain.SemanticStatusUnavailable
		snap.SemanticError = semanticErr.Error()
		logger.Error().Err(semanticErr).Msg("semantic mismatch detector unavailable")
	}

	a.fillScalars(snap, orders, positions)
	a.fillRollups(snap)

	logger.Info().
		Int("orders", len(orders.Orders)).
		Int("positions", len(positions.Positions)).
		Int("overall_issues", snap.Rollups.OverallIssues).
		Str("semantic_status", snap.SemanticStatus).
		Msg("evaluation complete")

	return snap, nil
}

func (a *Aggregator) fillScalars(snap *domain.Snapshot, orders domain.OrderSet, positions domain.PositionSet) {
	s := snap.Scalars

	s[domain.MetricTotalOrders] = float64(len(orders.Orders))
	s[domain.MetricTotalPositions] = float64(len(positions.Positions))
	s[domain.MetricEmptyOrders] = float64(len(snap.EmptyOrders))

	s[domain.MetricNullRowRatioOrders] = rules.NullRowRatioOrders(orders.Orders)
	s[domain.MetricNullRowRatioPositions] = rules.NullRowRatioPositions(positions.Positions)

	s[domain.MetricUniqueOrderID] = boolScalar(snap.Uniqueness.OrderIDUnique)
	s[domain.MetricUniquePositionID] = boolScalar(snap.Uniqueness.PositionIDUnique)
	s[domain.MetricUniqueInvoiceNumber] = boolScalar(snap.Uniqueness.InvoiceNumberUniqueByCountry)
	s[domain.MetricInvoicePrefixViolations] = float64(snap.Uniqueness.InvoicePrefixViolations)

	s[domain.MetricTestDataRows] = float64(len(snap.TestData))

	s[domain.MetricPlausiErrorsOrders] = float64(snap.OrderAgreedOverClaimed.Count)
	s[domain.MetricPlausiAvgDiffOrders] = snap.OrderAgreedOverClaimed.AvgDiff
	s[domain.MetricPlausiErrorsPositions] = float64(snap.PositionAgreedOverClaimed.Count)
	s[domain.MetricPlausiAvgDiffPositions] = snap.PositionAgreedOverClaimed.AvgDiff

	s[domain.MetricProformaReceipts] = float64(len(snap.Proforma))
	s[domain.MetricDiscountLogicErrors] = float64(snap.Discount.Count)
	s[domain.MetricDepreciationErrors] = float64(len(snap.Depreciation))
	s[domain.MetricHighValueOrders] = float64(len(snap.HighValue))
	s[domain.MetricCraftsmanOutliers] = float64(len(snap.CraftsmanOutliers))
	s[domain.MetricSemanticOutliers] = float64(len(snap.SemanticMismatches))
	s[domain.MetricReconciliationErrors] = float64(len(snap.Reconciliation))
	s[domain.MetricFalseNegativeOrders] = float64(snap.SignTriple.TotalViolations)
	s[domain.MetricFalseNegativePositions] = float64(snap.PositionSigns.TotalViolations)
}

// fillRollups derives the issue counters; it depends on every individual
// rule result and therefore runs after the parallel phase has joined.
// The false-negative contributions count once per violating column, matching
// the per-column scalars.
func (a *Aggregator) fillRollups(snap *domain.Snapshot) {
	numeric := len(snap.Depreciation) + len(snap.HighValue) + len(snap.Reconciliation)
	text := len(snap.TestData) + len(snap.CraftsmanOutliers) + len(snap.SemanticMismatches)
	plausi := snap.OrderAgreedOverClaimed.Count +
		snap.PositionAgreedOverClaimed.Count +
		snap.Discount.Count +
		len(snap.Proforma) +
		snap.SignTriple.TotalViolations +
		snap.PositionSigns.TotalViolations

	snap.Rollups = domain.Rollups{
		NumericIssues: numeric,
		TextIssues:    text,
		PlausiIssues:  plausi,
		OverallIssues: numeric + text + plausi,
	}

	snap.Scalars[domain.MetricNumericIssues] = float64(numeric)
	snap.Scalars[domain.MetricTextIssues] = float64(text)
	snap.Scalars[domain.MetricPlausiIssues] = float64(plausi)
	snap.Scalars[domain.MetricOverallIssues] = float64(snap.Rollups.OverallIssues)
}

func boolScalar(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
