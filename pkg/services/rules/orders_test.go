package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestAgreedOverClaimedOrders(t *testing.T) {
	t.Run("flags only rounded violations", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(100), Agreed: fptr(100.004)}, // noise, not a violation
			{OrderID: "b", Claimed: fptr(100), Agreed: fptr(110)},
			{OrderID: "c", Claimed: fptr(200), Agreed: fptr(190)},
		}

		result := AgreedOverClaimedOrders(orders)

		require.Len(t, result.Rows, 1)
		assert.Equal(t, "b", result.Rows[0].ID)
		assert.Equal(t, 10.0, result.Rows[0].Diff)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, 10.0, result.AvgDiff)
	})

	t.Run("average over violating rows only", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(100), Agreed: fptr(110)},
			{OrderID: "b", Claimed: fptr(100), Agreed: fptr(130)},
			{OrderID: "c", Claimed: fptr(100), Agreed: fptr(90)},
		}

		result := AgreedOverClaimedOrders(orders)

		assert.Equal(t, 2, result.Count)
		assert.Equal(t, 20.0, result.AvgDiff)
	})

	t.Run("missing amounts are not checkable", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "no-claim", Agreed: fptr(50)},
			{OrderID: "no-agreement", Claimed: fptr(50)},
			{OrderID: "neither"},
		}

		result := AgreedOverClaimedOrders(orders)

		assert.Empty(t, result.Rows)
		assert.Equal(t, 0, result.Count)
		assert.Equal(t, 0.0, result.AvgDiff)
	})

	t.Run("empty input yields zero result", func(t *testing.T) {
		result := AgreedOverClaimedOrders(nil)
		assert.Empty(t, result.Rows)
		assert.Equal(t, 0, result.Count)
		assert.Equal(t, 0.0, result.AvgDiff)
	})
}

func TestDepreciationConsistency(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "ok", Claimed: fptr(150), Agreed: fptr(100), DepreciationDiff: fptr(50)},
		{OrderID: "within-tolerance", Claimed: fptr(150), Agreed: fptr(100), DepreciationDiff: fptr(50.01)},
		{OrderID: "off", Claimed: fptr(150), Agreed: fptr(100), DepreciationDiff: fptr(45)},
		{OrderID: "missing", Claimed: fptr(150), Agreed: fptr(100)},
		{OrderID: "no-claim", Agreed: fptr(100), DepreciationDiff: fptr(45)},
		{OrderID: "no-agreement", Claimed: fptr(150), DepreciationDiff: fptr(45)},
	}

	rows := DepreciationConsistency(orders)

	require.Len(t, rows, 1)
	assert.Equal(t, "off", rows[0].OrderID)
	assert.Equal(t, 50.0, rows[0].Expected)
	assert.Equal(t, 45.0, rows[0].Recorded)
	assert.Equal(t, 5.0, rows[0].Discrepancy)
}

func TestHighValueOrders(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "under", Agreed: fptr(49999.99)},
		{OrderID: "exact", Agreed: fptr(50000)},
		{OrderID: "over", Agreed: fptr(75000)},
		{OrderID: "missing"},
	}

	rows := HighValueOrders(orders, 50000)

	require.Len(t, rows, 2)
	assert.Equal(t, "exact", rows[0].OrderID)
	assert.Equal(t, "over", rows[1].OrderID)
}

func TestProformaOrders(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "zero", Agreed: fptr(0)},
		{OrderID: "lower", Agreed: fptr(0.01)},
		{OrderID: "inside", Agreed: fptr(0.5)},
		{OrderID: "upper", Agreed: fptr(1)},
		{OrderID: "above", Agreed: fptr(1.01)},
		{OrderID: "missing"},
	}

	rows := ProformaOrders(orders, 0.01, 1)

	require.Len(t, rows, 3)
	assert.Equal(t, "lower", rows[0].OrderID)
	assert.Equal(t, "inside", rows[1].OrderID)
	assert.Equal(t, "upper", rows[2].OrderID)
}

func TestSignTriple(t *testing.T) {
	t.Run("single negative column counts once", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(-100), Recommended: fptr(90), Agreed: fptr(80)},
		}

		result := SignTriple(orders)

		require.Len(t, result.Rows, 1)
		assert.Equal(t, []string{domain.TripleClaimed}, result.Rows[0].Columns)
		assert.Equal(t, 1, result.TotalViolations)
		assert.Equal(t, 100.0, result.Rows[0].Severity)
	})

	t.Run("two negative columns count twice for one row", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(-100), Recommended: fptr(-90), Agreed: fptr(80)},
		}

		result := SignTriple(orders)

		require.Len(t, result.Rows, 1)
		assert.Equal(t, 2, result.TotalViolations)
		assert.Equal(t, 1, result.ColumnCounts[domain.TripleClaimed])
		assert.Equal(t, 1, result.ColumnCounts[domain.TripleRecommended])
		assert.Equal(t, 0, result.ColumnCounts[domain.TripleAgreed])
	})

	t.Run("all negative is a consistent credit, not a violation", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(-100), Recommended: fptr(-90), Agreed: fptr(-80)},
		}

		result := SignTriple(orders)

		assert.Empty(t, result.Rows)
		assert.Equal(t, 0, result.TotalViolations)
	})

	t.Run("all positive is clean", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Claimed: fptr(100), Recommended: fptr(90), Agreed: fptr(80)},
		}

		result := SignTriple(orders)
		assert.Empty(t, result.Rows)
	})

	t.Run("missing column is never negative", func(t *testing.T) {
		orders := []domain.Order{
			{OrderID: "a", Recommended: fptr(90), Agreed: fptr(80)},
			{OrderID: "b", Claimed: fptr(-100), Agreed: fptr(80)},
		}

		result := SignTriple(orders)

		require.Len(t, result.Rows, 1)
		assert.Equal(t, "b", result.Rows[0].OrderID)
		assert.Equal(t, []string{domain.TripleClaimed}, result.Rows[0].Columns)
		assert.Nil(t, result.Rows[0].Recommended)
		assert.Equal(t, 100.0, result.Rows[0].Severity)
	})
}

func TestEmptyOrders(t *testing.T) {
	received := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{OrderID: "with-positions", PositionCount: iptr(3)},
		{OrderID: "empty", ReceivedAt: received},
	}

	rows := EmptyOrders(orders)

	require.Len(t, rows, 1)
	assert.Equal(t, "empty", rows[0].OrderID)
	assert.Equal(t, received, rows[0].ReceivedAt)
}

func TestTestData(t *testing.T) {
	orders := []domain.Order{
		{OrderID: "a", CustomerGroup: "Testkunde"},
		{OrderID: "b", CustomerGroup: "INTERNAL TEST"},
		{OrderID: "c", CustomerGroup: "Privatkunde"},
		{OrderID: "d", CustomerGroup: ""},
	}

	assert.Equal(t, 2, TestDataCount(orders))

	rows := TestDataDetails(orders)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].OrderID)
	assert.Equal(t, "b", rows[1].OrderID)
}
