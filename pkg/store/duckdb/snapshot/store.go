// Package snapshot persists one evaluation run into a DuckDB generation:
// the flat scalar table, one detail table per rule, and the comparison
// against the previous generation.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/exp/maps"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	storemodels "github.com/de-tools/claim-audit/pkg/models/store"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
)

type Store interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	SaveComparison(ctx context.Context, rows []domain.ComparisonRow) error
	RunInfo(ctx context.Context) (*storemodels.RunInfo, error)
	Scalars(ctx context.Context) (map[string]float64, error)
	Comparison(ctx context.Context) ([]domain.ComparisonRow, error)
	ListTables(ctx context.Context) ([]string, error)
	ReadTable(ctx context.Context, name string) (*storemodels.Table, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db}, nil
}

// Detail table schemas. Column names follow the ingestion contract so a
// reader of the snapshot database sees the same vocabulary as the source.
var detailSchemas = map[string]string{
	"metric_plausibility_orders": `CREATE TABLE IF NOT EXISTS metric_plausibility_orders (
		KvaRechnung_ID VARCHAR, Forderung_Netto DOUBLE, Einigung_Netto DOUBLE, Diff DOUBLE)`,
	"metric_plausibility_positions": `CREATE TABLE IF NOT EXISTS metric_plausibility_positions (
		Position_ID VARCHAR, Forderung_Netto DOUBLE, Einigung_Netto DOUBLE, Diff DOUBLE)`,
	"metric_zeitwert_errors": `CREATE TABLE IF NOT EXISTS metric_zeitwert_errors (
		KvaRechnung_ID VARCHAR, Erwartet DOUBLE, Erfasst DOUBLE, Abweichung DOUBLE)`,
	"metric_above_50k": `CREATE TABLE IF NOT EXISTS metric_above_50k (
		KvaRechnung_ID VARCHAR, Einigung_Netto DOUBLE, CRMEingangszeit TIMESTAMP)`,
	"metric_proforma_receipts": `CREATE TABLE IF NOT EXISTS metric_proforma_receipts (
		KvaRechnung_ID VARCHAR, Einigung_Netto DOUBLE, CRMEingangszeit TIMESTAMP)`,
	"metric_sign_errors_orders": `CREATE TABLE IF NOT EXISTS metric_sign_errors_orders (
		KvaRechnung_ID VARCHAR, Forderung_Netto DOUBLE, Empfehlung_Netto DOUBLE,
		Einigung_Netto DOUBLE, Spalten VARCHAR, Schweregrad DOUBLE)`,
	"metric_sign_errors_positions": `CREATE TABLE IF NOT EXISTS metric_sign_errors_positions (
		Position_ID VARCHAR, KvaRechnung_ID VARCHAR, Kategorien VARCHAR)`,
	"metric_discount_errors": `CREATE TABLE IF NOT EXISTS metric_discount_errors (
		Position_ID VARCHAR, KvaRechnung_ID VARCHAR, Bezeichnung VARCHAR,
		Einigung_Netto DOUBLE, Ist_Rabatt BOOLEAN)`,
	"metric_discount_top_sources": `CREATE TABLE IF NOT EXISTS metric_discount_top_sources (
		Bezeichnung VARCHAR, Anzahl INTEGER)`,
	"metric_abweichung_summen": `CREATE TABLE IF NOT EXISTS metric_abweichung_summen (
		KvaRechnung_ID VARCHAR, Diff_Forderung DOUBLE, Diff_Einigung DOUBLE, CRMEingangszeit TIMESTAMP)`,
	"metric_empty_orders": `CREATE TABLE IF NOT EXISTS metric_empty_orders (
		KvaRechnung_ID VARCHAR, CRMEingangszeit TIMESTAMP)`,
	"metric_test_data": `CREATE TABLE IF NOT EXISTS metric_test_data (
		KvaRechnung_ID VARCHAR, Kundengruppe VARCHAR)`,
	"metric_null_ratio_orders": `CREATE TABLE IF NOT EXISTS metric_null_ratio_orders (
		Spalte VARCHAR, Ratio DOUBLE)`,
	"metric_null_ratio_positions": `CREATE TABLE IF NOT EXISTS metric_null_ratio_positions (
		Spalte VARCHAR, Ratio DOUBLE)`,
	"metric_duplicate_ids": `CREATE TABLE IF NOT EXISTS metric_duplicate_ids (
		Typ VARCHAR, ID VARCHAR, Land VARCHAR)`,
	"metric_handwerker_outliers": `CREATE TABLE IF NOT EXISTS metric_handwerker_outliers (
		Handwerker_Name VARCHAR, Gewerk_Name VARCHAR, Anzahl INTEGER, Gesamt INTEGER,
		Gewerke INTEGER, Ratio DOUBLE, Keyword_Ergebnis VARCHAR)`,
	"metric_semantic_outliers": `CREATE TABLE IF NOT EXISTS metric_semantic_outliers (
		KvaRechnung_ID VARCHAR, Handwerker_Name VARCHAR, Gewerk_Name VARCHAR, Similarity DOUBLE)`,
	"positions_per_order_over_time": `CREATE TABLE IF NOT EXISTS positions_per_order_over_time (
		Periode VARCHAR, AvgPositionen DOUBLE, PositionenGesamt INTEGER, Auftraege INTEGER)`,
}

// servableTables is the read allowlist: everything the snapshot writes, plus
// the fixed tables. Arbitrary table names from clients never reach SQL.
var servableTables = func() map[string]struct{} {
	s := make(map[string]struct{}, len(detailSchemas)+3)
	for name := range detailSchemas {
		s[name] = struct{}{}
	}
	s["scalar_metrics"] = struct{}{}
	s["metric_comparison"] = struct{}{}
	s["run_info"] = struct{}{}
	return s
}()

func (s *snapshotStore) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	txCtx := duckdb.WithTransaction(ctx, tx)

	names := maps.Keys(detailSchemas)
	sort.Strings(names)
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, detailSchemas[name]); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}

	if err := s.writeRunInfo(txCtx, snap); err != nil {
		return err
	}
	if err := s.writeScalars(txCtx, snap.Scalars); err != nil {
		return err
	}
	if err := s.writeDetails(txCtx, snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *snapshotStore) writeRunInfo(ctx context.Context, snap *domain.Snapshot) error {
	tx := duckdb.GetTransaction(ctx)
	var semanticErr any
	if snap.SemanticError != "" {
		semanticErr = snap.SemanticError
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO run_info (created_at, semantic_status, semantic_error) VALUES (?, ?, ?)`,
		snap.CreatedAt, snap.SemanticStatus, semanticErr,
	)
	if err != nil {
		return fmt.Errorf("insert run info: %w", err)
	}
	return nil
}

func (s *snapshotStore) writeScalars(ctx context.Context, scalars map[string]float64) error {
	tx := duckdb.GetTransaction(ctx)
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scalar_metrics (metric, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare scalar insert: %w", err)
	}
	defer stmt.Close()

	names := maps.Keys(scalars)
	sort.Strings(names)
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name, scalars[name]); err != nil {
			return fmt.Errorf("insert scalar %s: %w", name, err)
		}
	}
	return nil
}

func (s *snapshotStore) writeDetails(ctx context.Context, snap *domain.Snapshot) error {
	w := &tableWriter{tx: duckdb.GetTransaction(ctx), ctx: ctx}

	for _, r := range snap.OrderAgreedOverClaimed.Rows {
		w.insert("metric_plausibility_orders",
			`INSERT INTO metric_plausibility_orders VALUES (?, ?, ?, ?)`,
			r.ID, r.Claimed, r.Agreed, r.Diff)
	}
	for _, r := range snap.PositionAgreedOverClaimed.Rows {
		w.insert("metric_plausibility_positions",
			`INSERT INTO metric_plausibility_positions VALUES (?, ?, ?, ?)`,
			r.ID, r.Claimed, r.Agreed, r.Diff)
	}
	for _, r := range snap.Depreciation {
		w.insert("metric_zeitwert_errors",
			`INSERT INTO metric_zeitwert_errors VALUES (?, ?, ?, ?)`,
			r.OrderID, r.Expected, r.Recorded, r.Discrepancy)
	}
	for _, r := range snap.HighValue {
		w.insert("metric_above_50k",
			`INSERT INTO metric_above_50k VALUES (?, ?, ?)`,
			r.OrderID, r.Agreed, nullableTime(r.ReceivedAt))
	}
	for _, r := range snap.Proforma {
		w.insert("metric_proforma_receipts",
			`INSERT INTO metric_proforma_receipts VALUES (?, ?, ?)`,
			r.OrderID, r.Agreed, nullableTime(r.ReceivedAt))
	}
	for _, r := range snap.SignTriple.Rows {
		w.insert("metric_sign_errors_orders",
			`INSERT INTO metric_sign_errors_orders VALUES (?, ?, ?, ?, ?, ?)`,
			r.OrderID, r.Claimed, r.Recommended, r.Agreed, strings.Join(r.Columns, ","), r.Severity)
	}
	for _, r := range snap.PositionSigns.Rows {
		w.insert("metric_sign_errors_positions",
			`INSERT INTO metric_sign_errors_positions VALUES (?, ?, ?)`,
			r.PositionID, r.OrderID, strings.Join(r.Categories, ","))
	}
	for _, r := range snap.Discount.Rows {
		w.insert("metric_discount_errors",
			`INSERT INTO metric_discount_errors VALUES (?, ?, ?, ?, ?)`,
			r.PositionID, r.OrderID, r.Description, r.Agreed, r.IsDiscount)
	}
	for _, r := range snap.Discount.TopSources {
		w.insert("metric_discount_top_sources",
			`INSERT INTO metric_discount_top_sources VALUES (?, ?)`,
			r.Description, r.Count)
	}
	for _, r := range snap.Reconciliation {
		w.insert("metric_abweichung_summen",
			`INSERT INTO metric_abweichung_summen VALUES (?, ?, ?, ?)`,
			r.OrderID, r.DiffClaimed, r.DiffAgreed, nullableTime(r.Timestamp))
	}
	for _, r := range snap.EmptyOrders {
		w.insert("metric_empty_orders",
			`INSERT INTO metric_empty_orders VALUES (?, ?)`,
			r.OrderID, nullableTime(r.ReceivedAt))
	}
	for _, r := range snap.TestData {
		w.insert("metric_test_data",
			`INSERT INTO metric_test_data VALUES (?, ?)`,
			r.OrderID, r.CustomerGroup)
	}
	for _, r := range snap.NullRatiosOrders {
		w.insert("metric_null_ratio_orders",
			`INSERT INTO metric_null_ratio_orders VALUES (?, ?)`,
			r.Column, r.Ratio)
	}
	for _, r := range snap.NullRatiosPositions {
		w.insert("metric_null_ratio_positions",
			`INSERT INTO metric_null_ratio_positions VALUES (?, ?)`,
			r.Column, r.Ratio)
	}
	for _, r := range snap.Uniqueness.DuplicateOrderIDs {
		w.insert("metric_duplicate_ids",
			`INSERT INTO metric_duplicate_ids VALUES (?, ?, ?)`,
			"order", r.ID, r.Country)
	}
	for _, r := range snap.Uniqueness.DuplicatePositionIDs {
		w.insert("metric_duplicate_ids",
			`INSERT INTO metric_duplicate_ids VALUES (?, ?, ?)`,
			"position", r.ID, r.Country)
	}
	for _, r := range snap.Uniqueness.DuplicateInvoiceNumbers {
		w.insert("metric_duplicate_ids",
			`INSERT INTO metric_duplicate_ids VALUES (?, ?, ?)`,
			"invoice", r.ID, r.Country)
	}
	for _, r := range snap.CraftsmanOutliers {
		w.insert("metric_handwerker_outliers",
			`INSERT INTO metric_handwerker_outliers VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Craftsman, r.Trade, r.Count, r.TotalCount, r.DistinctTrades, r.Ratio, r.KeywordResult)
	}
	for _, r := range snap.SemanticMismatches {
		w.insert("metric_semantic_outliers",
			`INSERT INTO metric_semantic_outliers VALUES (?, ?, ?, ?)`,
			r.OrderID, r.Craftsman, r.Trade, r.Similarity)
	}
	for _, r := range snap.PositionsOverTime {
		w.insert("positions_per_order_over_time",
			`INSERT INTO positions_per_order_over_time VALUES (?, ?, ?, ?)`,
			r.Period, r.AvgPositions, r.TotalPositions, r.OrderCount)
	}

	return w.err
}

// tableWriter threads the first insert error through a long sequence of
// writes without an error check after every row.
type tableWriter struct {
	tx  *sql.Tx
	ctx context.Context
	err error
}

func (w *tableWriter) insert(table, query string, args ...any) {
	if w.err != nil {
		return
	}
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		w.err = fmt.Errorf("insert into %s: %w", table, err)
	}
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (s *snapshotStore) SaveComparison(ctx context.Context, rows []domain.ComparisonRow) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO metric_comparison (metric, current_value, old_value, absolute_change, percent_change)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare comparison insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Metric, r.Current, r.Previous, r.AbsoluteChange, r.PercentChange); err != nil {
			return fmt.Errorf("insert comparison row %s: %w", r.Metric, err)
		}
	}
	return nil
}

func (s *snapshotStore) RunInfo(ctx context.Context) (*storemodels.RunInfo, error) {
	var (
		createdAt time.Time
		status    string
		errMsg    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, semantic_status, semantic_error FROM run_info ORDER BY created_at DESC LIMIT 1`,
	).Scan(&createdAt, &status, &errMsg)
	if err != nil {
		return nil, fmt.Errorf("query run info: %w", err)
	}
	return &storemodels.RunInfo{
		CreatedAt:      createdAt,
		SemanticStatus: status,
		SemanticError:  errMsg.String,
	}, nil
}

func (s *snapshotStore) Scalars(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metric, value FROM scalar_metrics`)
	if err != nil {
		return nil, fmt.Errorf("query scalar metrics: %w", err)
	}
	defer rows.Close()

	scalars := make(map[string]float64)
	for rows.Next() {
		var (
			metric string
			value  float64
		)
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, fmt.Errorf("scan scalar metric: %w", err)
		}
		scalars[metric] = value
	}
	return scalars, rows.Err()
}

func (s *snapshotStore) Comparison(ctx context.Context) ([]domain.ComparisonRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric, current_value, old_value, absolute_change, percent_change
		FROM metric_comparison ORDER BY metric`)
	if err != nil {
		return nil, fmt.Errorf("query comparison: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ComparisonRow, 0)
	for rows.Next() {
		var r domain.ComparisonRow
		if err := rows.Scan(&r.Metric, &r.Current, &r.Previous, &r.AbsoluteChange, &r.PercentChange); err != nil {
			return nil, fmt.Errorf("scan comparison row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListTables returns the servable tables that actually exist in this
// generation, sorted by name.
func (s *snapshotStore) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'main'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, len(servableTables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if _, ok := servableTables[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, rows.Err()
}

// ReadTable returns one servable table verbatim. Names outside the allowlist
// are rejected before any SQL is built from them.
func (s *snapshotStore) ReadTable(ctx context.Context, name string) (*storemodels.Table, error) {
	if _, ok := servableTables[name]; !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, name))
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}

	table := &storemodels.Table{Name: name, Columns: cols, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", name, err)
		}
		table.Rows = append(table.Rows, values)
	}
	return table, rows.Err()
}
