package rules

import (
	"sort"
	"strings"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// DerivePositionFlags computes the discount flag from the description and the
// resulting plausibility flag. Ingestion and tests share this one definition;
// a position is plausible when a non-negative agreed amount carries no
// discount marker, or a negative amount does. A missing agreed amount has no
// sign to contradict and stays plausible.
func DerivePositionFlags(p *domain.Position, keywords []string) {
	p.IsDiscount = containsKeyword(p.Description, keywords)
	p.Plausible = p.Agreed == nil ||
		(*p.Agreed >= 0 && !p.IsDiscount) ||
		(*p.Agreed < 0 && p.IsDiscount)
}

func containsKeyword(description string, keywords []string) bool {
	lower := strings.ToLower(description)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// AgreedOverClaimedPositions is the position-level variant of the agreed-over-
// claimed check.
func AgreedOverClaimedPositions(positions []domain.Position) domain.AgreedOverClaimedResult {
	var result domain.AgreedOverClaimedResult
	var sum float64

	for _, p := range positions {
		if p.Claimed == nil || p.Agreed == nil {
			continue
		}
		if !RoundedGreater(*p.Agreed, *p.Claimed) {
			continue
		}
		diff := Round2(*p.Agreed - *p.Claimed)
		result.Rows = append(result.Rows, domain.AgreedOverClaimedRow{
			ID:      p.PositionID,
			Claimed: *p.Claimed,
			Agreed:  *p.Agreed,
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

// PositionSigns runs the four independent sign sub-checks. Each sub-check
// contributes its own category count; the detail rows are the union of
// positions failing any sub-check. Sub-checks with a missing operand are
// skipped for that position.
func PositionSigns(positions []domain.Position) domain.PositionSignResult {
	result := domain.PositionSignResult{
		CategoryCounts: map[string]int{
			domain.PosSignQuantity:       0,
			domain.PosSignAgreedQuantity: 0,
			domain.PosSignUnitPrice:      0,
			domain.PosSignNetAmount:      0,
		},
	}

	for _, p := range positions {
		var cats []string
		if negative(p.Quantity) {
			cats = append(cats, domain.PosSignQuantity)
		}
		if negative(p.AgreedQuantity) {
			cats = append(cats, domain.PosSignAgreedQuantity)
		}
		if p.UnitPrice != nil && p.AgreedUnitPrice != nil && (*p.UnitPrice < 0) != (*p.AgreedUnitPrice < 0) {
			cats = append(cats, domain.PosSignUnitPrice)
		}
		if p.Claimed != nil && p.Agreed != nil && (*p.Claimed < 0) != (*p.Agreed < 0) {
			cats = append(cats, domain.PosSignNetAmount)
		}
		if len(cats) == 0 {
			continue
		}
		for _, c := range cats {
			result.CategoryCounts[c]++
		}
		result.TotalViolations += len(cats)
		result.Rows = append(result.Rows, domain.PositionSignRow{
			PositionID: p.PositionID,
			OrderID:    p.OrderID,
			Categories: cats,
		})
	}
	return result
}

// DiscountCheckCount counts positions whose sign contradicts their discount
// flag.
func DiscountCheckCount(positions []domain.Position) int {
	count := 0
	for _, p := range positions {
		if !p.Plausible {
			count++
		}
	}
	return count
}

// DiscountCheckDetails returns the implausible positions plus the top error
// sources grouped by description.
func DiscountCheckDetails(positions []domain.Position, topN int) domain.DiscountResult {
	var result domain.DiscountResult
	sources := make(map[string]int)

	for _, p := range positions {
		if p.Plausible {
			continue
		}
		result.Rows = append(result.Rows, domain.DiscountRow{
			PositionID:  p.PositionID,
			OrderID:     p.OrderID,
			Description: p.Description,
			Agreed:      p.Agreed,
			IsDiscount:  p.IsDiscount,
		})
		sources[p.Description]++
	}
	result.Count = len(result.Rows)

	for desc, count := range sources {
		result.TopSources = append(result.TopSources, domain.DiscountSource{Description: desc, Count: count})
	}
	sort.Slice(result.TopSources, func(i, j int) bool {
		if result.TopSources[i].Count != result.TopSources[j].Count {
			return result.TopSources[i].Count > result.TopSources[j].Count
		}
		return result.TopSources[i].Description < result.TopSources[j].Description
	})
	if topN > 0 && len(result.TopSources) > topN {
		result.TopSources = result.TopSources[:topN]
	}
	return result
}

// PositionCounts aggregates the number of positions per order identifier.
func PositionCounts(positions []domain.Position) map[string]int {
	counts := make(map[string]int)
	for _, p := range positions {
		counts[p.OrderID]++
	}
	return counts
}
