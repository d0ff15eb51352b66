package rules

import (
	"strings"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

const invoiceNumberPrefix = "KVR-"

// CheckUniqueness runs the identifier checks: order id and position id must
// be globally unique, the invoice number unique per country. Duplicates are
// reported with redundancy included, the way the review tooling expects them.
func CheckUniqueness(orders []domain.Order, positions []domain.Position) domain.UniquenessResult {
	result := domain.UniquenessResult{
		OrderIDUnique:                true,
		PositionIDUnique:             true,
		InvoiceNumberUniqueByCountry: true,
	}

	orderIDCounts := make(map[string]int, len(orders))
	for _, o := range orders {
		orderIDCounts[o.OrderID]++
	}
	for _, o := range orders {
		if orderIDCounts[o.OrderID] > 1 {
			result.OrderIDUnique = false
			result.DuplicateOrderIDs = append(result.DuplicateOrderIDs, domain.DuplicateIDRow{ID: o.OrderID})
		}
	}

	positionIDCounts := make(map[string]int, len(positions))
	for _, p := range positions {
		positionIDCounts[p.PositionID]++
	}
	for _, p := range positions {
		if positionIDCounts[p.PositionID] > 1 {
			result.PositionIDUnique = false
			result.DuplicatePositionIDs = append(result.DuplicatePositionIDs, domain.DuplicateIDRow{ID: p.PositionID})
		}
	}

	type countryNumber struct {
		country string
		number  string
	}
	invoiceCounts := make(map[countryNumber]int, len(orders))
	for _, o := range orders {
		if o.InvoiceNumber == "" {
			continue
		}
		invoiceCounts[countryNumber{o.Country, o.InvoiceNumber}]++
		if !strings.HasPrefix(o.InvoiceNumber, invoiceNumberPrefix) {
			result.InvoicePrefixViolations++
		}
	}
	for _, o := range orders {
		if o.InvoiceNumber == "" {
			continue
		}
		if invoiceCounts[countryNumber{o.Country, o.InvoiceNumber}] > 1 {
			result.InvoiceNumberUniqueByCountry = false
			result.DuplicateInvoiceNumbers = append(result.DuplicateInvoiceNumbers, domain.DuplicateIDRow{
				ID:      o.InvoiceNumber,
				Country: o.Country,
			})
		}
	}

	return result
}
