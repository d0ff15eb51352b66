// Package outlier detects craftsmen whose trade assignment is statistically
// inconsistent with the rest of their order volume.
package outlier

import (
	"sort"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// Settings contains the detector threshold.
type Settings struct {
	// RatioThreshold marks a (craftsman, trade) pair as an outlier when the
	// craftsman services more than one trade and this trade accounts for
	// less than the threshold share of their volume (default: 0.2).
	RatioThreshold float64
}

func DefaultSettings() Settings {
	return Settings{RatioThreshold: 0.2}
}

// TradeDistribution computes the full per-pair stats table over all orders
// with a non-null (craftsman, trade) pair. Consumers filter on Outlier.
func TradeDistribution(orders []domain.Order, settings Settings) []domain.TradeStat {
	type pair struct {
		craftsman string
		trade     string
	}
	pairCounts := make(map[pair]int)
	totals := make(map[string]int)
	trades := make(map[string]map[string]struct{})

	for _, o := range orders {
		if o.Craftsman == "" || o.Trade == "" {
			continue
		}
		pairCounts[pair{o.Craftsman, o.Trade}]++
		totals[o.Craftsman]++
		if trades[o.Craftsman] == nil {
			trades[o.Craftsman] = make(map[string]struct{})
		}
		trades[o.Craftsman][o.Trade] = struct{}{}
	}

	stats := make([]domain.TradeStat, 0, len(pairCounts))
	for p, count := range pairCounts {
		total := totals[p.craftsman]
		distinct := len(trades[p.craftsman])
		ratio := float64(count) / float64(total)
		stats = append(stats, domain.TradeStat{
			Craftsman:      p.craftsman,
			Trade:          p.trade,
			Count:          count,
			TotalCount:     total,
			DistinctTrades: distinct,
			Ratio:          ratio,
			Outlier:        distinct > 1 && ratio < settings.RatioThreshold,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Craftsman != stats[j].Craftsman {
			return stats[i].Craftsman < stats[j].Craftsman
		}
		return stats[i].Trade < stats[j].Trade
	})
	return stats
}

// Outliers filters the stats table to the flagged pairs.
func Outliers(stats []domain.TradeStat) []domain.TradeStat {
	var flagged []domain.TradeStat
	for _, s := range stats {
		if s.Outlier {
			flagged = append(flagged, s)
		}
	}
	return flagged
}
