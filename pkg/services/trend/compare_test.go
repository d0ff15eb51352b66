package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

func TestCompare(t *testing.T) {
	t.Run("rows sorted by metric name", func(t *testing.T) {
		current := map[string]float64{"b_metric": 2, "a_metric": 1}

		rows := Compare(current, nil)

		require.Len(t, rows, 2)
		assert.Equal(t, "a_metric", rows[0].Metric)
		assert.Equal(t, "b_metric", rows[1].Metric)
	})

	t.Run("first run defaults previous to zero", func(t *testing.T) {
		rows := Compare(map[string]float64{"count": 5}, nil)

		require.Len(t, rows, 1)
		assert.Equal(t, 0.0, rows[0].Previous)
		assert.Equal(t, 5.0, rows[0].AbsoluteChange)
		assert.Equal(t, 100.0, rows[0].PercentChange)
	})

	t.Run("percent change cases", func(t *testing.T) {
		tests := []struct {
			name     string
			current  float64
			previous float64
			want     float64
		}{
			{"both zero", 0, 0, 0},
			{"from zero", 5, 0, 100},
			{"to zero", 0, 5, -100},
			{"increase", 150, 100, 50},
			{"decrease", 75, 100, -25},
			{"rounded to two decimals", 1, 3, -66.67},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rows := Compare(
					map[string]float64{"m": tt.current},
					map[string]float64{"m": tt.previous},
				)
				require.Len(t, rows, 1)
				assert.Equal(t, tt.want, rows[0].PercentChange)
			})
		}
	})

	t.Run("metrics only in previous are dropped", func(t *testing.T) {
		rows := Compare(
			map[string]float64{"kept": 1},
			map[string]float64{"kept": 1, "gone": 9},
		)

		require.Len(t, rows, 1)
		assert.Equal(t, domain.ComparisonRow{
			Metric: "kept", Current: 1, Previous: 1, AbsoluteChange: 0, PercentChange: 0,
		}, rows[0])
	})
}
