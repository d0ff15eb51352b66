// Package metrics serves read access to the promoted snapshot generation.
package metrics

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/claim-audit/pkg/export"
	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/models/store"
	"github.com/de-tools/claim-audit/pkg/store/duckdb"
	"github.com/de-tools/claim-audit/pkg/store/duckdb/snapshot"
)

type Explorer interface {
	Metrics(ctx context.Context) (*store.RunInfo, map[string]float64, error)
	Comparison(ctx context.Context) ([]domain.ComparisonRow, error)
	Tables(ctx context.Context) ([]string, error)
	Table(ctx context.Context, name string) (*store.Table, error)
	Workbook(ctx context.Context) (*excelize.File, error)
}

// SnapshotExplorer opens the current generation per call instead of holding
// a connection. Promotion happens by file rename; a held handle would keep
// serving the superseded generation.
type SnapshotExplorer struct {
	generations duckdb.Generations
}

func NewSnapshotExplorer(generations duckdb.Generations) Explorer {
	return &SnapshotExplorer{generations: generations}
}

func (e *SnapshotExplorer) withStore(fn func(snapshot.Store) error) error {
	if !e.generations.HasCurrent() {
		return fmt.Errorf("no snapshot has been built yet")
	}
	db, err := duckdb.OpenReadOnly(e.generations.CurrentPath())
	if err != nil {
		return fmt.Errorf("open current snapshot: %w", err)
	}
	defer db.Close()

	st, err := snapshot.NewStore(db)
	if err != nil {
		return err
	}
	return fn(st)
}

func (e *SnapshotExplorer) Metrics(ctx context.Context) (*store.RunInfo, map[string]float64, error) {
	var (
		info    *store.RunInfo
		scalars map[string]float64
	)
	err := e.withStore(func(st snapshot.Store) error {
		var err error
		if info, err = st.RunInfo(ctx); err != nil {
			return err
		}
		scalars, err = st.Scalars(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return info, scalars, nil
}

func (e *SnapshotExplorer) Comparison(ctx context.Context) ([]domain.ComparisonRow, error) {
	var rows []domain.ComparisonRow
	err := e.withStore(func(st snapshot.Store) error {
		domainRows, err := st.Comparison(ctx)
		if err != nil {
			return err
		}
		rows = domainRows
		return nil
	})
	return rows, err
}

func (e *SnapshotExplorer) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := e.withStore(func(st snapshot.Store) error {
		var err error
		names, err = st.ListTables(ctx)
		return err
	})
	return names, err
}

func (e *SnapshotExplorer) Table(ctx context.Context, name string) (*store.Table, error) {
	var table *store.Table
	err := e.withStore(func(st snapshot.Store) error {
		var err error
		table, err = st.ReadTable(ctx, name)
		return err
	})
	return table, err
}

func (e *SnapshotExplorer) Workbook(ctx context.Context) (*excelize.File, error) {
	var f *excelize.File
	err := e.withStore(func(st snapshot.Store) error {
		var err error
		f, err = export.Workbook(ctx, st)
		return err
	})
	return f, err
}
