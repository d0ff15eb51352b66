package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const RunInfoSchema = `
	CREATE TABLE IF NOT EXISTS run_info (
		created_at TIMESTAMP NOT NULL,
		semantic_status VARCHAR NOT NULL,
		semantic_error VARCHAR
	);
`
const ScalarMetricsSchema = `
	CREATE TABLE IF NOT EXISTS scalar_metrics (
		metric VARCHAR NOT NULL,
		value DOUBLE NOT NULL,
		PRIMARY KEY (metric)
	);
`
const ComparisonSchema = `
	CREATE TABLE IF NOT EXISTS metric_comparison (
		metric VARCHAR NOT NULL,
		current_value DOUBLE NOT NULL,
		old_value DOUBLE NOT NULL,
		absolute_change DOUBLE NOT NULL,
		percent_change DOUBLE NOT NULL,
		PRIMARY KEY (metric)
	);
`

var bootQueries = []string{
	RunInfoSchema,
	ScalarMetricsSchema,
	ComparisonSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens (or creates) a snapshot database and bootstraps the fixed
// tables. Detail tables are created per run by the snapshot store since
// their set depends on which rules were applicable.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

// OpenReadOnly opens an existing database without schema bootstrap, for the
// ingestion input and for serving previous snapshot generations.
func OpenReadOnly(path string) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?access_mode=read_only", path), nil)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(c), nil
}
