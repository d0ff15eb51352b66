// Package trend diffs the scalar metrics of two snapshot generations.
package trend

import (
	"math"
	"sort"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// Compare produces one row per metric in the current snapshot. Metrics
// missing from the previous snapshot (or a first run with previous == nil)
// default to 0. Percent change: 0 when both are zero, 100 when only the
// previous value is zero, else the relative change rounded to 2 decimals.
func Compare(current, previous map[string]float64) []domain.ComparisonRow {
	rows := make([]domain.ComparisonRow, 0, len(current))
	for name, cur := range current {
		prev := previous[name]
		rows = append(rows, domain.ComparisonRow{
			Metric:         name,
			Current:        cur,
			Previous:       prev,
			AbsoluteChange: cur - prev,
			PercentChange:  percentChange(cur, prev),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Metric < rows[j].Metric })
	return rows
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return math.Round((current-previous)/previous*100*100) / 100
}
