package domain

import "time"

// Scalar metric names, kept stable across runs so the trend comparison can
// match them by name.
const (
	MetricTotalOrders             = "count_total_orders"
	MetricTotalPositions          = "count_total_positions"
	MetricEmptyOrders             = "count_empty_orders"
	MetricNullRowRatioOrders      = "null_row_ratio_orders"
	MetricNullRowRatioPositions   = "null_row_ratio_positions"
	MetricUniqueOrderID           = "is_unique_kva_id"
	MetricUniquePositionID        = "is_unique_position_id"
	MetricUniqueInvoiceNumber     = "is_unique_kva_nummer_land"
	MetricInvoicePrefixViolations = "count_invoice_prefix_violations"
	MetricTestDataRows            = "count_test_data_rows"
	MetricPlausiErrorsOrders      = "count_plausibility_errors_df"
	MetricPlausiAvgDiffOrders     = "avg_plausibility_diff_df"
	MetricPlausiErrorsPositions   = "count_plausibility_errors_df2"
	MetricPlausiAvgDiffPositions  = "avg_plausibility_diff_df2"
	MetricProformaReceipts        = "count_proforma_receipts"
	MetricDiscountLogicErrors     = "count_discount_logic_errors"
	MetricDepreciationErrors      = "count_zeitwert_errors"
	MetricHighValueOrders         = "count_above_50k"
	MetricCraftsmanOutliers       = "count_handwerker_outliers"
	MetricSemanticOutliers        = "count_semantic_outliers"
	MetricReconciliationErrors    = "count_abweichung_summen"
	MetricFalseNegativeOrders     = "count_false_negative_df"
	MetricFalseNegativePositions  = "count_false_negative_df2"

	MetricNumericIssues = "numeric_issues"
	MetricTextIssues    = "text_issues"
	MetricPlausiIssues  = "plausi_issues"
	MetricOverallIssues = "overall_issues"
)

// Semantic detector status values persisted with the snapshot. A failed
// embedding backend must stay distinguishable from "no mismatches found".
const (
	SemanticStatusOK          = "ok"
	SemanticStatusUnavailable = "unavailable"
	SemanticStatusSkipped     = "skipped"
)

// Rollups are the derived issue counters, computed strictly after all
// individual rules.
type Rollups struct {
	NumericIssues int
	TextIssues    int
	PlausiIssues  int
	OverallIssues int
}

// Snapshot is the full evaluation output of one run: the flat scalar table
// plus one detail table per rule. Booleans are stored as 0/1 scalars so the
// trend comparison stays purely numeric.
type Snapshot struct {
	CreatedAt time.Time

	Scalars map[string]float64
	Rollups Rollups

	OrderAgreedOverClaimed    AgreedOverClaimedResult
	PositionAgreedOverClaimed AgreedOverClaimedResult
	Depreciation              []DepreciationRow
	HighValue                 []HighValueRow
	Proforma                  []ProformaRow
	SignTriple                SignTripleResult
	PositionSigns             PositionSignResult
	Discount                  DiscountResult
	Reconciliation            []ReconciliationRow
	EmptyOrders               []EmptyOrderRow
	TestData                  []TestDataRow
	NullRatiosOrders          []NullRatio
	NullRatiosPositions       []NullRatio
	Uniqueness                UniquenessResult
	CraftsmanOutliers         []TradeStat // outlier pairs only, keyword-annotated
	SemanticMismatches        []SemanticMismatch
	SemanticStatus            string
	SemanticError             string // populated when SemanticStatus is unavailable
	PositionsOverTime         []PositionsOverTimeRow
}

// ComparisonRow is one metric diffed against the previous snapshot.
type ComparisonRow struct {
	Metric         string
	Current        float64
	Previous       float64
	AbsoluteChange float64
	PercentChange  float64
}
