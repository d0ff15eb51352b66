package rules

import "github.com/de-tools/claim-audit/pkg/models/domain"

// ReconcileOrderPositions sums claimed and agreed amounts per order across
// its positions and flags orders where either sum disagrees with the
// order-level field beyond tolerance. Missing position amounts drop out of
// the sums; orders missing either amount are not reconcilable and skipped.
// Orders without positions are compared against zero sums, so a non-zero
// order amount always surfaces here.
func ReconcileOrderPositions(orders []domain.Order, positions []domain.Position) []domain.ReconciliationRow {
	type sums struct {
		claimed float64
		agreed  float64
	}
	byOrder := make(map[string]sums)
	for _, p := range positions {
		s := byOrder[p.OrderID]
		if p.Claimed != nil {
			s.claimed += *p.Claimed
		}
		if p.Agreed != nil {
			s.agreed += *p.Agreed
		}
		byOrder[p.OrderID] = s
	}

	var rows []domain.ReconciliationRow
	for _, o := range orders {
		if o.Claimed == nil || o.Agreed == nil {
			continue
		}
		s := byOrder[o.OrderID] // zero sums when no positions matched
		diffClaimed := Round2(*o.Claimed - s.claimed)
		diffAgreed := Round2(*o.Agreed - s.agreed)
		if IsClose(diffClaimed, 0) && IsClose(diffAgreed, 0) {
			continue
		}
		rows = append(rows, domain.ReconciliationRow{
			OrderID:     o.OrderID,
			DiffClaimed: diffClaimed,
			DiffAgreed:  diffAgreed,
			Timestamp:   o.ReceivedAt,
		})
	}
	return rows
}
