package domain

// Keyword corroboration verdicts for flagged craftsman/trade pairs.
const (
	KeywordConfirmed      = "CONFIRMED_BY_NAME"
	KeywordNoInfo         = "NO_KEYWORD_INFO"
	KeywordConflictPrefix = "CONFLICT_WITH_"
)

// TradeStat is the per (craftsman, trade) assignment distribution. A pair is
// an outlier when the craftsman services more than one trade and this trade
// accounts for less than the configured share of their volume.
type TradeStat struct {
	Craftsman      string
	Trade          string
	Count          int
	TotalCount     int // all orders of this craftsman
	DistinctTrades int
	Ratio          float64 // Count / TotalCount
	Outlier        bool
	// KeywordResult is the corroboration annotation; empty until the
	// keyword check ran over the outlier subset.
	KeywordResult string
}

// SemanticMismatch is a row whose craftsman name and trade label scored below
// the similarity threshold.
type SemanticMismatch struct {
	OrderID    string
	Craftsman  string
	Trade      string
	Similarity float64
}
