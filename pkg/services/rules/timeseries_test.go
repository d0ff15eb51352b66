package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

func TestPositionsOverTime(t *testing.T) {
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		{OrderID: "o1", ReceivedAt: jan},
		{OrderID: "o2", ReceivedAt: jan},
		{OrderID: "o3", ReceivedAt: feb},
		{OrderID: "no-timestamp"},
	}
	positions := []domain.Position{
		{PositionID: "p1", OrderID: "o1"},
		{PositionID: "p2", OrderID: "o1"},
		{PositionID: "p3", OrderID: "o1"},
		{PositionID: "p4", OrderID: "o2"},
		{PositionID: "p5", OrderID: "o3"},
	}

	rows := PositionsOverTime(orders, positions)

	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01", rows[0].Period)
	assert.Equal(t, 2.0, rows[0].AvgPositions)
	assert.Equal(t, 4, rows[0].TotalPositions)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, "2025-02", rows[1].Period)
	assert.Equal(t, 1.0, rows[1].AvgPositions)
}
