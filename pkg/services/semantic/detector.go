// Package semantic flags orders whose craftsman name and trade label carry
// unrelated semantic content, catching mis-assignments the statistical
// detector cannot see.
package semantic

import (
	"context"
	"fmt"
	"sort"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Embedder encodes strings to fixed-width, L2-normalized vectors. The model
// behind it (device selection, retries, API batching) is an implementation
// detail; tests substitute a deterministic stub.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Settings bound the detector. EncodeBatchSize limits how many unique strings
// go to the model per call; RowBatchSize limits how many rows are scored per
// pass and can be much larger since scoring only indexes precomputed vectors.
type Settings struct {
	Threshold       float64
	EncodeBatchSize int
	RowBatchSize    int
}

func DefaultSettings() Settings {
	return Settings{
		Threshold:       0.2,
		EncodeBatchSize: 64,
		RowBatchSize:    20000,
	}
}

type Detector struct {
	embedder Embedder
	settings Settings
}

func NewDetector(embedder Embedder, settings Settings) (*Detector, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if settings.EncodeBatchSize <= 0 || settings.RowBatchSize <= 0 {
		return nil, fmt.Errorf("batch sizes must be positive")
	}
	return &Detector{embedder: embedder, settings: settings}, nil
}

// Detect returns the orders whose craftsman/trade similarity falls strictly
// below the threshold, least similar first. Rows with a missing craftsman or
// trade are dropped. The embedding model is invoked on unique strings only,
// never once per row.
func (d *Detector) Detect(ctx context.Context, orders []domain.Order) ([]domain.SemanticMismatch, error) {
	logger := zerolog.Ctx(ctx)

	type row struct {
		orderID   string
		craftsman int
		trade     int
	}
	var (
		rows         []row
		craftsmen    []string
		trades       []string
		craftsmanIdx = make(map[string]int)
		tradeIdx     = make(map[string]int)
	)
	for _, o := range orders {
		if o.Craftsman == "" || o.Trade == "" {
			continue
		}
		ci, ok := craftsmanIdx[o.Craftsman]
		if !ok {
			ci = len(craftsmen)
			craftsmanIdx[o.Craftsman] = ci
			craftsmen = append(craftsmen, o.Craftsman)
		}
		ti, ok := tradeIdx[o.Trade]
		if !ok {
			ti = len(trades)
			tradeIdx[o.Trade] = ti
			trades = append(trades, o.Trade)
		}
		rows = append(rows, row{orderID: o.OrderID, craftsman: ci, trade: ti})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	logger.Debug().
		Int("rows", len(rows)).
		Int("unique_craftsmen", len(craftsmen)).
		Int("unique_trades", len(trades)).
		Msg("encoding unique strings")

	craftsmanVecs, err := d.encodeUnique(ctx, craftsmen)
	if err != nil {
		return nil, fmt.Errorf("encode craftsman names: %w", err)
	}
	tradeVecs, err := d.encodeUnique(ctx, trades)
	if err != nil {
		return nil, fmt.Errorf("encode trade labels: %w", err)
	}

	var mismatches []domain.SemanticMismatch
	for start := 0; start < len(rows); start += d.settings.RowBatchSize {
		end := start + d.settings.RowBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		for _, r := range rows[start:end] {
			sim, err := dot(craftsmanVecs[r.craftsman], tradeVecs[r.trade])
			if err != nil {
				return nil, fmt.Errorf("similarity for order %s: %w", r.orderID, err)
			}
			if sim < d.settings.Threshold {
				mismatches = append(mismatches, domain.SemanticMismatch{
					OrderID:    r.orderID,
					Craftsman:  craftsmen[r.craftsman],
					Trade:      trades[r.trade],
					Similarity: sim,
				})
			}
		}
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Similarity < mismatches[j].Similarity })
	return mismatches, nil
}

// encodeUnique runs the embedder over texts in sub-batches to bound model
// memory, independent of the much larger row batches.
func (d *Detector) encodeUnique(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += d.settings.EncodeBatchSize {
		end := start + d.settings.EncodeBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := d.embedder.Encode(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// dot is the cosine similarity of two pre-normalized vectors.
func dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}
