package rules

import "github.com/de-tools/claim-audit/pkg/models/domain"

// Null accounting over the tracked nullable columns. Empty strings, nil
// pointers and zero timestamps count as null; ratios are percentages rounded
// to 2 decimals, matching the trend comparison's precision.

type orderColumn struct {
	name   string
	isNull func(domain.Order) bool
}

var orderColumns = []orderColumn{
	{ColCountry, func(o domain.Order) bool { return o.Country == "" }},
	{ColCustomerGroup, func(o domain.Order) bool { return o.CustomerGroup == "" }},
	{ColCraftsman, func(o domain.Order) bool { return o.Craftsman == "" }},
	{ColTrade, func(o domain.Order) bool { return o.Trade == "" }},
	{ColClaimType, func(o domain.Order) bool { return o.ClaimType == "" }},
	{ColDamageType, func(o domain.Order) bool { return o.DamageType == "" }},
	{ColClaimed, func(o domain.Order) bool { return o.Claimed == nil }},
	{ColRecommended, func(o domain.Order) bool { return o.Recommended == nil }},
	{ColAgreed, func(o domain.Order) bool { return o.Agreed == nil }},
	{ColDepreciationDiff, func(o domain.Order) bool { return o.DepreciationDiff == nil }},
	{ColReceivedAt, func(o domain.Order) bool { return o.ReceivedAt.IsZero() }},
	{ColPositionCount, func(o domain.Order) bool { return o.PositionCount == nil }},
}

type positionColumn struct {
	name   string
	isNull func(domain.Position) bool
}

var positionColumns = []positionColumn{
	{ColQuantity, func(p domain.Position) bool { return p.Quantity == nil }},
	{ColAgreedQuantity, func(p domain.Position) bool { return p.AgreedQuantity == nil }},
	{ColUnitPrice, func(p domain.Position) bool { return p.UnitPrice == nil }},
	{ColAgreedUnitPrice, func(p domain.Position) bool { return p.AgreedUnitPrice == nil }},
	{ColClaimed, func(p domain.Position) bool { return p.Claimed == nil }},
	{ColAgreed, func(p domain.Position) bool { return p.Agreed == nil }},
	{ColDescription, func(p domain.Position) bool { return p.Description == "" }},
	{ColReceivedAt, func(p domain.Position) bool { return p.ReceivedAt.IsZero() }},
}

// NullRatiosOrders reports the per-column null percentage for orders.
func NullRatiosOrders(orders []domain.Order) []domain.NullRatio {
	ratios := make([]domain.NullRatio, 0, len(orderColumns))
	for _, col := range orderColumns {
		nulls := 0
		for _, o := range orders {
			if col.isNull(o) {
				nulls++
			}
		}
		ratios = append(ratios, domain.NullRatio{Column: col.name, Ratio: percentage(nulls, len(orders))})
	}
	return ratios
}

// NullRatiosPositions reports the per-column null percentage for positions.
func NullRatiosPositions(positions []domain.Position) []domain.NullRatio {
	ratios := make([]domain.NullRatio, 0, len(positionColumns))
	for _, col := range positionColumns {
		nulls := 0
		for _, p := range positions {
			if col.isNull(p) {
				nulls++
			}
		}
		ratios = append(ratios, domain.NullRatio{Column: col.name, Ratio: percentage(nulls, len(positions))})
	}
	return ratios
}

// NullRowRatioOrders is the percentage of orders with at least one null
// among the tracked columns.
func NullRowRatioOrders(orders []domain.Order) float64 {
	rows := 0
	for _, o := range orders {
		for _, col := range orderColumns {
			if col.isNull(o) {
				rows++
				break
			}
		}
	}
	return percentage(rows, len(orders))
}

// NullRowRatioPositions is the position-level row null ratio.
func NullRowRatioPositions(positions []domain.Position) float64 {
	rows := 0
	for _, p := range positions {
		for _, col := range positionColumns {
			if col.isNull(p) {
				rows++
				break
			}
		}
	}
	return percentage(rows, len(positions))
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}
