package rules

import (
	"sort"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// PositionsOverTime aggregates the average number of positions per order by
// ingestion month. Orders without a timestamp are left out.
func PositionsOverTime(orders []domain.Order, positions []domain.Position) []domain.PositionsOverTimeRow {
	counts := PositionCounts(positions)

	type bucket struct {
		positions int
		orders    int
	}
	buckets := make(map[string]*bucket)
	for _, o := range orders {
		if o.ReceivedAt.IsZero() {
			continue
		}
		period := o.ReceivedAt.Format("2006-01")
		b := buckets[period]
		if b == nil {
			b = &bucket{}
			buckets[period] = b
		}
		b.orders++
		b.positions += counts[o.OrderID]
	}

	rows := make([]domain.PositionsOverTimeRow, 0, len(buckets))
	for period, b := range buckets {
		rows = append(rows, domain.PositionsOverTimeRow{
			Period:         period,
			AvgPositions:   float64(b.positions) / float64(b.orders),
			TotalPositions: b.positions,
			OrderCount:     b.orders,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}
