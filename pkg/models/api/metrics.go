package api

import "time"

// Metrics is the flat scalar table of the current snapshot generation.
type Metrics struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	SemanticStatus string             `json:"semantic_status"`
	SemanticError  string             `json:"semantic_error,omitempty"`
	Scalars        map[string]float64 `json:"scalars"`
}

type ComparisonRow struct {
	Metric         string  `json:"metric"`
	CurrentValue   float64 `json:"current_value"`
	OldValue       float64 `json:"old_value"`
	AbsoluteChange float64 `json:"absolute_change"`
	PercentChange  float64 `json:"percent_change"`
}

type TableList struct {
	Tables []string `json:"tables"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type Error struct {
	Message string `json:"message"`
}
