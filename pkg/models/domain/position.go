package domain

import "time"

// Position is one line item belonging to exactly one Order via OrderID.
// Numeric fields are nil when the source cell was empty.
type Position struct {
	PositionID string
	OrderID    string // KvaRechnung_ID

	Quantity        *float64 // Menge
	AgreedQuantity  *float64 // Menge_Einigung
	UnitPrice       *float64 // EP
	AgreedUnitPrice *float64 // EP_Einigung
	Claimed         *float64 // Forderung_Netto
	Agreed          *float64 // Einigung_Netto

	Description string // Bezeichnung

	// IsDiscount is set during ingestion by keyword matching on Description.
	IsDiscount bool
	// Plausible is the sign-consistency flag between IsDiscount and the
	// agreed amount's sign.
	Plausible bool

	ReceivedAt time.Time // CRMEingangszeit, inherited from the order
}
