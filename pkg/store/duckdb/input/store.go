// Package input reads the ingested order and position tables from the
// source DuckDB file. The delivery may carry a subset of the contract
// columns; the reader records what arrived so downstream rules can decide
// applicability instead of consuming zero values.
package input

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/de-tools/claim-audit/pkg/services/rules"
)

const (
	OrderTable    = "auftragsdaten"
	PositionTable = "positionsdaten"
)

type Store interface {
	Load(ctx context.Context) (domain.OrderSet, domain.PositionSet, error)
}

type inputStore struct {
	db               *sql.DB
	discountKeywords []string
}

// NewStore builds the input reader. The discount keywords drive the derived
// position flags; pass the configured list, not just the default.
func NewStore(db *sql.DB, discountKeywords []string) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &inputStore{db: db, discountKeywords: discountKeywords}, nil
}

func (s *inputStore) Load(ctx context.Context) (domain.OrderSet, domain.PositionSet, error) {
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return domain.OrderSet{}, domain.PositionSet{}, err
	}
	positions, err := s.loadPositions(ctx)
	if err != nil {
		return domain.OrderSet{}, domain.PositionSet{}, err
	}

	// The position count is not part of the delivery; derive it from the
	// position set so the empty-order rule becomes applicable whenever
	// positions carry an order id.
	if positions.Columns.Has(rules.ColOrderID) {
		counts := rules.PositionCounts(positions.Positions)
		for i := range orders.Orders {
			if n, ok := counts[orders.Orders[i].OrderID]; ok {
				c := n
				orders.Orders[i].PositionCount = &c
			}
		}
		orders.Columns[rules.ColPositionCount] = struct{}{}
	}

	return orders, positions, nil
}

// tableColumns reads the delivered schema of one table.
func (s *inputStore) tableColumns(ctx context.Context, table string) (domain.ColumnSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("read schema of %s: %w", table, err)
	}
	defer rows.Close()

	cols := domain.NewColumnSet()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}

// nullableFloat keeps a null cell distinguishable from a zero amount; a
// coerced zero would make rules flag rows the delivery never filled in.
func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// selectList builds the SELECT column list for the delivered subset of the
// contract columns. Absent columns are selected as NULL so every scan target
// keeps its position.
func selectList(delivered domain.ColumnSet, contract []string) string {
	parts := make([]string, len(contract))
	for i, col := range contract {
		if delivered.Has(col) {
			parts[i] = col
		} else {
			parts[i] = fmt.Sprintf("NULL AS %s", col)
		}
	}
	return strings.Join(parts, ", ")
}

var orderContract = []string{
	rules.ColOrderID,
	rules.ColInvoiceNumber,
	rules.ColCountry,
	rules.ColCustomerGroup,
	rules.ColCraftsman,
	rules.ColTrade,
	rules.ColClaimType,
	rules.ColDamageType,
	rules.ColClaimed,
	rules.ColRecommended,
	rules.ColAgreed,
	rules.ColDepreciationDiff,
	rules.ColReceivedAt,
}

func (s *inputStore) loadOrders(ctx context.Context) (domain.OrderSet, error) {
	delivered, err := s.tableColumns(ctx, OrderTable)
	if err != nil {
		return domain.OrderSet{}, err
	}
	if len(delivered) == 0 {
		return domain.OrderSet{}, fmt.Errorf("table %s not found in input database", OrderTable)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, selectList(delivered, orderContract), OrderTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return domain.OrderSet{}, fmt.Errorf("query %s: %w", OrderTable, err)
	}
	defer rows.Close()

	set := domain.OrderSet{Columns: delivered}
	for rows.Next() {
		var (
			orderID, invoice, country, group   sql.NullString
			craftsman, trade, claimT, damageT  sql.NullString
			claimed, recommended, agreed, depr sql.NullFloat64
			receivedAt                         sql.NullTime
		)
		err := rows.Scan(
			&orderID, &invoice, &country, &group,
			&craftsman, &trade, &claimT, &damageT,
			&claimed, &recommended, &agreed, &depr,
			&receivedAt,
		)
		if err != nil {
			return domain.OrderSet{}, fmt.Errorf("scan order row: %w", err)
		}

		o := domain.Order{
			OrderID:          orderID.String,
			InvoiceNumber:    invoice.String,
			Country:          country.String,
			CustomerGroup:    group.String,
			Craftsman:        craftsman.String,
			Trade:            trade.String,
			ClaimType:        claimT.String,
			DamageType:       damageT.String,
			Claimed:          nullableFloat(claimed),
			Recommended:      nullableFloat(recommended),
			Agreed:           nullableFloat(agreed),
			DepreciationDiff: nullableFloat(depr),
		}
		if receivedAt.Valid {
			o.ReceivedAt = receivedAt.Time
		}
		set.Orders = append(set.Orders, o)
	}
	return set, rows.Err()
}

var positionContract = []string{
	rules.ColPositionID,
	rules.ColOrderID,
	rules.ColQuantity,
	rules.ColAgreedQuantity,
	rules.ColUnitPrice,
	rules.ColAgreedUnitPrice,
	rules.ColClaimed,
	rules.ColAgreed,
	rules.ColDescription,
	rules.ColReceivedAt,
}

func (s *inputStore) loadPositions(ctx context.Context) (domain.PositionSet, error) {
	delivered, err := s.tableColumns(ctx, PositionTable)
	if err != nil {
		return domain.PositionSet{}, err
	}
	if len(delivered) == 0 {
		return domain.PositionSet{}, fmt.Errorf("table %s not found in input database", PositionTable)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, selectList(delivered, positionContract), PositionTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return domain.PositionSet{}, fmt.Errorf("query %s: %w", PositionTable, err)
	}
	defer rows.Close()

	set := domain.PositionSet{Columns: delivered}
	for rows.Next() {
		var (
			positionID, orderID, description    sql.NullString
			quantity, agreedQuantity, unitPrice sql.NullFloat64
			agreedUnitPrice, claimed, agreed    sql.NullFloat64
			receivedAt                          sql.NullTime
		)
		err := rows.Scan(
			&positionID, &orderID, &quantity, &agreedQuantity,
			&unitPrice, &agreedUnitPrice, &claimed, &agreed,
			&description, &receivedAt,
		)
		if err != nil {
			return domain.PositionSet{}, fmt.Errorf("scan position row: %w", err)
		}

		p := domain.Position{
			PositionID:      positionID.String,
			OrderID:         orderID.String,
			Quantity:        nullableFloat(quantity),
			AgreedQuantity:  nullableFloat(agreedQuantity),
			UnitPrice:       nullableFloat(unitPrice),
			AgreedUnitPrice: nullableFloat(agreedUnitPrice),
			Claimed:         nullableFloat(claimed),
			Agreed:          nullableFloat(agreed),
			Description:     description.String,
		}
		if receivedAt.Valid {
			p.ReceivedAt = receivedAt.Time
		}
		rules.DerivePositionFlags(&p, s.discountKeywords)
		set.Positions = append(set.Positions, p)
	}
	return set, rows.Err()
}
