package semantic

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// stubEmbedder maps known strings to fixed unit vectors and records batch
// sizes, so similarity outcomes are fully deterministic.
type stubEmbedder struct {
	vectors    map[string][]float32
	batchSizes []int
	err        error
}

func (s *stubEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batchSizes = append(s.batchSizes, len(texts))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = v
	}
	return out, nil
}

var (
	vecX = []float32{1, 0}
	vecY = []float32{0, 1}
)

func TestNewDetector(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewDetector(nil, DefaultSettings())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive batch sizes", func(t *testing.T) {
		settings := DefaultSettings()
		settings.EncodeBatchSize = 0
		_, err := NewDetector(&stubEmbedder{}, settings)
		assert.Error(t, err)
	})
}

func TestDetector_Detect(t *testing.T) {
	ctx := context.Background()

	t.Run("flags dissimilar pairs sorted ascending", func(t *testing.T) {
		stub := &stubEmbedder{vectors: map[string][]float32{
			"Elektro Müller": vecX,
			"Elektro":        vecX,
			"Bäckerei Kunz":  vecY,
			"Dachdecker":     vecX,
		}}
		detector, err := NewDetector(stub, DefaultSettings())
		require.NoError(t, err)

		orders := []domain.Order{
			{OrderID: "o1", Craftsman: "Elektro Müller", Trade: "Elektro"},
			{OrderID: "o2", Craftsman: "Bäckerei Kunz", Trade: "Dachdecker"},
		}

		mismatches, err := detector.Detect(ctx, orders)
		require.NoError(t, err)

		require.Len(t, mismatches, 1)
		assert.Equal(t, "o2", mismatches[0].OrderID)
		assert.Equal(t, "Bäckerei Kunz", mismatches[0].Craftsman)
		assert.InDelta(t, 0, mismatches[0].Similarity, 1e-9)
	})

	t.Run("similarity exactly at threshold is not flagged", func(t *testing.T) {
		settings := DefaultSettings()
		settings.Threshold = 1.0
		stub := &stubEmbedder{vectors: map[string][]float32{
			"Elektro Müller": vecX,
			"Elektro":        vecX,
		}}
		detector, err := NewDetector(stub, settings)
		require.NoError(t, err)

		orders := []domain.Order{{OrderID: "o1", Craftsman: "Elektro Müller", Trade: "Elektro"}}

		mismatches, err := detector.Detect(ctx, orders)
		require.NoError(t, err)
		assert.Empty(t, mismatches)
	})

	t.Run("encodes unique strings in sub-batches", func(t *testing.T) {
		settings := DefaultSettings()
		settings.EncodeBatchSize = 2
		vectors := map[string][]float32{"Elektro": vecX}
		var orders []domain.Order
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("Firma %d", i)
			vectors[name] = vecX
			// every craftsman appears twice, unique strings are encoded once
			orders = append(orders,
				domain.Order{OrderID: fmt.Sprintf("a%d", i), Craftsman: name, Trade: "Elektro"},
				domain.Order{OrderID: fmt.Sprintf("b%d", i), Craftsman: name, Trade: "Elektro"},
			)
		}
		stub := &stubEmbedder{vectors: vectors}
		detector, err := NewDetector(stub, settings)
		require.NoError(t, err)

		_, err = detector.Detect(ctx, orders)
		require.NoError(t, err)

		// 5 craftsmen in batches of 2, then 1 trade
		assert.Equal(t, []int{2, 2, 1, 1}, stub.batchSizes)
	})

	t.Run("rows with missing craftsman or trade are dropped", func(t *testing.T) {
		stub := &stubEmbedder{vectors: map[string][]float32{}}
		detector, err := NewDetector(stub, DefaultSettings())
		require.NoError(t, err)

		orders := []domain.Order{
			{OrderID: "o1", Craftsman: "", Trade: "Elektro"},
			{OrderID: "o2", Craftsman: "Müller", Trade: ""},
		}

		mismatches, err := detector.Detect(ctx, orders)
		require.NoError(t, err)
		assert.Empty(t, mismatches)
		assert.Empty(t, stub.batchSizes)
	})

	t.Run("embedder failure propagates", func(t *testing.T) {
		stub := &stubEmbedder{err: fmt.Errorf("quota exceeded")}
		detector, err := NewDetector(stub, DefaultSettings())
		require.NoError(t, err)

		orders := []domain.Order{{OrderID: "o1", Craftsman: "Müller", Trade: "Elektro"}}

		_, err = detector.Detect(ctx, orders)
		assert.ErrorContains(t, err, "quota exceeded")
	})
}
