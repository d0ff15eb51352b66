package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

func TestCheckUniqueness(t *testing.T) {
	t.Run("all unique", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "o1", InvoiceNumber: "KVR-1", Country: "DE"},
			{OrderID: "o2", InvoiceNumber: "KVR-2", Country: "DE"},
		}
		positions := []domain.Position{{PositionID: "p1"}, {PositionID: "p2"}}

		result := CheckUniqueness(orders, positions)

		assert.True(t, result.OrderIDUnique)
		assert.True(t, result.PositionIDUnique)
		assert.True(t, result.InvoiceNumberUniqueByCountry)
		assert.Empty(t, result.DuplicateOrderIDs)
		assert.Equal(t, 0, result.InvoicePrefixViolations)
	})

	t.Run("duplicates reported with redundancy", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "o1"}, {OrderID: "o1"}, {OrderID: "o2"},
		}

		result := CheckUniqueness(orders, nil)

		assert.False(t, result.OrderIDUnique)
		require.Len(t, result.DuplicateOrderIDs, 2)
	})

	t.Run("same invoice number in different countries is allowed", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "o1", InvoiceNumber: "KVR-1", Country: "DE"},
			{OrderID: "o2", InvoiceNumber: "KVR-1", Country: "AT"},
		}

		result := CheckUniqueness(orders, nil)
		assert.True(t, result.InvoiceNumberUniqueByCountry)
	})

	t.Run("same invoice number in one country is not", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "o1", InvoiceNumber: "KVR-1", Country: "DE"},
			{OrderID: "o2", InvoiceNumber: "KVR-1", Country: "DE"},
		}

		result := CheckUniqueness(orders, nil)

		assert.False(t, result.InvoiceNumberUniqueByCountry)
		require.Len(t, result.DuplicateInvoiceNumbers, 2)
		assert.Equal(t, "DE", result.DuplicateInvoiceNumbers[0].Country)
	})

	t.Run("prefix violations counted, empty numbers skipped", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "o1", InvoiceNumber: "KVR-1", Country: "DE"},
			{OrderID: "o2", InvoiceNumber: "RX-9", Country: "DE"},
			{OrderID: "o3", InvoiceNumber: "", Country: "DE"},
		}

		result := CheckUniqueness(orders, nil)
		assert.Equal(t, 1, result.InvoicePrefixViolations)
	})
}
