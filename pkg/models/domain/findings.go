package domain

import "time"

// Result types of the rule catalogue. Each rule returns its own typed table;
// findings are never merged into a unified log.

// AgreedOverClaimedRow flags a record where the agreed amount exceeds the
// claimed amount at 2-decimal precision.
type AgreedOverClaimedRow struct {
	ID      string
	Claimed float64
	Agreed  float64
	Diff    float64 // Agreed - Claimed, rounded to 2 decimals
}

type AgreedOverClaimedResult struct {
	Rows    []AgreedOverClaimedRow
	Count   int
	AvgDiff float64 // 0 when Count == 0
}

// DepreciationRow records a mismatch between the recomputed claimed-agreed
// difference and the stored depreciation difference. Discrepancy > 0 means
// the recorded difference is too small.
type DepreciationRow struct {
	OrderID     string
	Expected    float64 // Claimed - Agreed
	Recorded    float64
	Discrepancy float64 // Expected - Recorded
}

type HighValueRow struct {
	OrderID    string
	Agreed     float64
	ReceivedAt time.Time
}

type ProformaRow struct {
	OrderID    string
	Agreed     float64
	ReceivedAt time.Time
}

// Triple columns reported by the order sign check.
const (
	TripleClaimed     = "claimed"
	TripleRecommended = "recommended"
	TripleAgreed      = "agreed"
)

// SignTripleRow is an order where at least one column of the monetary triple
// is negative while the other two are not both negative. Columns the source
// left empty stay nil and are never violating.
type SignTripleRow struct {
	OrderID     string
	Claimed     *float64
	Recommended *float64
	Agreed      *float64
	Columns     []string // violating columns, in triple order
	Severity    float64  // max absolute value across the present columns
}

// SignTripleResult counts violations once per violating column, so
// TotalViolations can exceed len(Rows).
type SignTripleResult struct {
	ColumnCounts    map[string]int
	Rows            []SignTripleRow
	TotalViolations int
}

// Position sign sub-check categories.
const (
	PosSignQuantity       = "quantity_negative"
	PosSignAgreedQuantity = "agreed_quantity_negative"
	PosSignUnitPrice      = "unit_price_sign_mismatch"
	PosSignNetAmount      = "net_amount_sign_mismatch"
)

type PositionSignRow struct {
	PositionID string
	OrderID    string
	Categories []string
}

type PositionSignResult struct {
	CategoryCounts  map[string]int
	Rows            []PositionSignRow
	TotalViolations int
}

// DiscountRow is a position whose sign does not match its discount flag.
type DiscountRow struct {
	PositionID  string
	OrderID     string
	Description string
	Agreed      *float64
	IsDiscount  bool
}

// DiscountSource aggregates implausible positions by description for the
// top-N error-source breakdown.
type DiscountSource struct {
	Description string
	Count       int
}

type DiscountResult struct {
	Rows       []DiscountRow
	Count      int
	TopSources []DiscountSource
}

// ReconciliationRow is an order whose position sums disagree with the
// order-level amounts beyond tolerance.
type ReconciliationRow struct {
	OrderID     string
	DiffClaimed float64 // order claimed - sum of position claimed
	DiffAgreed  float64
	Timestamp   time.Time
}

type EmptyOrderRow struct {
	OrderID    string
	ReceivedAt time.Time
}

type TestDataRow struct {
	OrderID       string
	CustomerGroup string
}

// NullRatio is the percentage of null values in one column, rounded to
// 2 decimals.
type NullRatio struct {
	Column string
	Ratio  float64
}

// DuplicateIDRow is a record participating in an identifier collision,
// redundant occurrences included.
type DuplicateIDRow struct {
	ID      string
	Country string // set for the per-country invoice number check
}

// UniquenessResult captures the identifier checks. Violations are reported,
// not rejected.
type UniquenessResult struct {
	OrderIDUnique                bool
	PositionIDUnique             bool
	InvoiceNumberUniqueByCountry bool
	DuplicateOrderIDs            []DuplicateIDRow
	DuplicatePositionIDs         []DuplicateIDRow
	DuplicateInvoiceNumbers      []DuplicateIDRow
	// InvoicePrefixViolations counts invoice numbers not starting with "KVR-".
	InvoicePrefixViolations int
}

// PositionsOverTimeRow is the monthly positions-per-order trend.
type PositionsOverTimeRow struct {
	Period         string // YYYY-MM
	AvgPositions   float64
	TotalPositions int
	OrderCount     int
}
