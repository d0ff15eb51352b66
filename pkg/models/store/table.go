package store

import "time"

// Table is one snapshot detail table read back verbatim, column order
// preserved, for clients that render tables rather than typed findings.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// ScalarMetric is one row of the flat metric table.
type ScalarMetric struct {
	Metric string
	Value  float64
}

// RunInfo describes the run that produced a snapshot generation.
type RunInfo struct {
	CreatedAt      time.Time
	SemanticStatus string
	SemanticError  string
}
