package domain

import "time"

// Order is one repair-cost estimate/settlement record ("Auftrag"). The three
// monetary fields Claimed/Recommended/Agreed correspond to
// Forderung/Empfehlung/Einigung (net amounts); nil means the source cell was
// empty, which is distinct from a zero amount.
type Order struct {
	OrderID       string // KvaRechnung_ID
	InvoiceNumber string // KvaRechnung_Nummer
	Country       string
	CustomerGroup string
	Craftsman     string // Handwerker_Name
	Trade         string // Gewerk_Name
	ClaimType     string // Falltyp_Name
	DamageType    string // Schadenart_Name

	Claimed     *float64 // Forderung_Netto
	Recommended *float64 // Empfehlung_Netto
	Agreed      *float64 // Einigung_Netto

	// DepreciationDiff is the recorded value-before-depreciation difference
	// (Differenz_vor_Zeitwert_Netto); nil when the source left it empty.
	DepreciationDiff *float64

	ReceivedAt time.Time // CRMEingangszeit

	// PositionCount is derived during ingestion from the position set;
	// nil means no positions were matched to this order.
	PositionCount *int
}

// ColumnSet records which columns the ingestion stage actually delivered.
// Rules that need absent columns are skipped up front instead of producing
// garbage from zero values.
type ColumnSet map[string]struct{}

func NewColumnSet(cols ...string) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

func (s ColumnSet) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := s[c]; !ok {
			return false
		}
	}
	return true
}

// OrderSet is the order record set plus its delivered schema.
type OrderSet struct {
	Orders  []Order
	Columns ColumnSet
}

// PositionSet is the position record set plus its delivered schema.
type PositionSet struct {
	Positions []Position
	Columns   ColumnSet
}
