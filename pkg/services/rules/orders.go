package rules

import (
	"strings"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// AgreedOverClaimedOrders flags orders whose agreed amount exceeds the claimed
// amount at 2-decimal precision. Orders missing either amount are not
// checkable and never flagged. The reported average is the mean difference
// over the violating rows, 0 when there are none.
func AgreedOverClaimedOrders(orders []domain.Order) domain.AgreedOverClaimedResult {
	var result domain.AgreedOverClaimedResult
	var sum float64

	for _, o := range orders {
		if o.Claimed == nil || o.Agreed == nil {
			continue
		}
		if !RoundedGreater(*o.Agreed, *o.Claimed) {
			continue
		}
		diff := Round2(*o.Agreed - *o.Claimed)
		result.Rows = append(result.Rows, domain.AgreedOverClaimedRow{
			ID:      o.OrderID,
			Claimed: *o.Claimed,
			Agreed:  *o.Agreed,
			Diff:    diff,
		})
		sum += diff
	}

	result.Count = len(result.Rows)
	if result.Count > 0 {
		result.AvgDiff = sum / float64(result.Count)
	}
	return result
}

// DepreciationConsistency recomputes claimed - agreed per order and compares
// it to the recorded depreciation difference within the cent tolerance.
// Orders missing any of the three operands are not checked here; they count
// as null in the cleanliness statistics instead.
func DepreciationConsistency(orders []domain.Order) []domain.DepreciationRow {
	var rows []domain.DepreciationRow
	for _, o := range orders {
		if o.DepreciationDiff == nil || o.Claimed == nil || o.Agreed == nil {
			continue
		}
		expected := Round2(*o.Claimed - *o.Agreed)
		recorded := *o.DepreciationDiff
		if IsClose(expected, recorded) {
			continue
		}
		rows = append(rows, domain.DepreciationRow{
			OrderID:     o.OrderID,
			Expected:    expected,
			Recorded:    recorded,
			Discrepancy: Round2(expected - recorded),
		})
	}
	return rows
}

// HighValueOrders flags agreed amounts at or above the manual-review
// threshold.
func HighValueOrders(orders []domain.Order, threshold float64) []domain.HighValueRow {
	var rows []domain.HighValueRow
	for _, o := range orders {
		if o.Agreed != nil && *o.Agreed >= threshold {
			rows = append(rows, domain.HighValueRow{
				OrderID:    o.OrderID,
				Agreed:     *o.Agreed,
				ReceivedAt: o.ReceivedAt,
			})
		}
	}
	return rows
}

// ProformaOrders flags agreed amounts inside the placeholder interval,
// lower bound inclusive, upper bound inclusive (defaults 0.01 to 1).
func ProformaOrders(orders []domain.Order, lower, upper float64) []domain.ProformaRow {
	var rows []domain.ProformaRow
	for _, o := range orders {
		if o.Agreed != nil && *o.Agreed >= lower && *o.Agreed <= upper {
			rows = append(rows, domain.ProformaRow{
				OrderID:    o.OrderID,
				Agreed:     *o.Agreed,
				ReceivedAt: o.ReceivedAt,
			})
		}
	}
	return rows
}

// SignTriple checks the (claimed, recommended, agreed) triple for false
// negatives: a column is violating when it is negative while the other two
// are not both negative. A missing column is never negative and never
// violating. Violations are counted once per column, so the total can exceed
// the number of distinct rows.
func SignTriple(orders []domain.Order) domain.SignTripleResult {
	result := domain.SignTripleResult{
		ColumnCounts: map[string]int{
			domain.TripleClaimed:     0,
			domain.TripleRecommended: 0,
			domain.TripleAgreed:      0,
		},
	}

	for _, o := range orders {
		cols := tripleViolations(o.Claimed, o.Recommended, o.Agreed)
		if len(cols) == 0 {
			continue
		}
		for _, c := range cols {
			result.ColumnCounts[c]++
		}
		result.TotalViolations += len(cols)
		result.Rows = append(result.Rows, domain.SignTripleRow{
			OrderID:     o.OrderID,
			Claimed:     o.Claimed,
			Recommended: o.Recommended,
			Agreed:      o.Agreed,
			Columns:     cols,
			Severity:    maxAbs(o.Claimed, o.Recommended, o.Agreed),
		})
	}
	return result
}

func tripleViolations(claimed, recommended, agreed *float64) []string {
	var cols []string
	if negative(claimed) && !(negative(recommended) && negative(agreed)) {
		cols = append(cols, domain.TripleClaimed)
	}
	if negative(recommended) && !(negative(claimed) && negative(agreed)) {
		cols = append(cols, domain.TripleRecommended)
	}
	if negative(agreed) && !(negative(claimed) && negative(recommended)) {
		cols = append(cols, domain.TripleAgreed)
	}
	return cols
}

func negative(v *float64) bool {
	return v != nil && *v < 0
}

func maxAbs(values ...*float64) float64 {
	var max float64
	for _, p := range values {
		if p == nil {
			continue
		}
		v := *p
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// EmptyOrders flags orders with no derived position count, i.e. orders no
// position was matched to.
func EmptyOrders(orders []domain.Order) []domain.EmptyOrderRow {
	var rows []domain.EmptyOrderRow
	for _, o := range orders {
		if o.PositionCount == nil {
			rows = append(rows, domain.EmptyOrderRow{OrderID: o.OrderID, ReceivedAt: o.ReceivedAt})
		}
	}
	return rows
}

// TestDataCount counts orders whose customer group contains "test",
// case-insensitively.
func TestDataCount(orders []domain.Order) int {
	count := 0
	for _, o := range orders {
		if isTestCustomerGroup(o.CustomerGroup) {
			count++
		}
	}
	return count
}

// TestDataDetails returns the flagged orders themselves; kept separate from
// TestDataCount so neither caller pays for the shape it does not need.
func TestDataDetails(orders []domain.Order) []domain.TestDataRow {
	var rows []domain.TestDataRow
	for _, o := range orders {
		if isTestCustomerGroup(o.CustomerGroup) {
			rows = append(rows, domain.TestDataRow{OrderID: o.OrderID, CustomerGroup: o.CustomerGroup})
		}
	}
	return rows
}

func isTestCustomerGroup(group string) bool {
	return strings.Contains(strings.ToLower(group), "test")
}
