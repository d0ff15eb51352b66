package rules

import (
	"context"
	"sort"

	"github.com/de-tools/claim-audit/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Canonical column names of the ingestion contract. The ingestion stage may
// deliver a subset; the catalogue decides applicability once, up front,
// instead of probing columns inside each rule.
const (
	ColOrderID          = "KvaRechnung_ID"
	ColInvoiceNumber    = "KvaRechnung_Nummer"
	ColCountry          = "Land"
	ColCustomerGroup    = "Kundengruppe"
	ColCraftsman        = "Handwerker_Name"
	ColTrade            = "Gewerk_Name"
	ColClaimType        = "Falltyp_Name"
	ColDamageType       = "Schadenart_Name"
	ColClaimed          = "Forderung_Netto"
	ColRecommended      = "Empfehlung_Netto"
	ColAgreed           = "Einigung_Netto"
	ColDepreciationDiff = "Differenz_vor_Zeitwert_Netto"
	ColReceivedAt       = "CRMEingangszeit"
	ColPositionCount    = "PositionsAnzahl"

	ColPositionID      = "Position_ID"
	ColQuantity        = "Menge"
	ColAgreedQuantity  = "Menge_Einigung"
	ColUnitPrice       = "EP"
	ColAgreedUnitPrice = "EP_Einigung"
	ColDescription     = "Bezeichnung"
)

// RuleID identifies a catalogue entry.
type RuleID string

const (
	RuleAgreedOverClaimedOrders    RuleID = "agreed_over_claimed_orders"
	RuleAgreedOverClaimedPositions RuleID = "agreed_over_claimed_positions"
	RuleDepreciation               RuleID = "depreciation_consistency"
	RuleHighValue                  RuleID = "high_value"
	RuleProforma                   RuleID = "proforma"
	RuleSignTriple                 RuleID = "sign_triple"
	RulePositionSigns              RuleID = "position_signs"
	RuleDiscount                   RuleID = "discount_logic"
	RuleReconciliation             RuleID = "order_position_reconciliation"
	RuleEmptyOrders                RuleID = "empty_orders"
	RuleTestData                   RuleID = "test_data"
	RuleUniqueness                 RuleID = "id_uniqueness"
	RulePositionsOverTime          RuleID = "positions_over_time"
)

type requirement struct {
	orderCols    []string
	positionCols []string
}

var ruleRequirements = map[RuleID]requirement{
	RuleAgreedOverClaimedOrders:    {orderCols: []string{ColOrderID, ColClaimed, ColAgreed}},
	RuleAgreedOverClaimedPositions: {positionCols: []string{ColPositionID, ColClaimed, ColAgreed}},
	RuleDepreciation:               {orderCols: []string{ColOrderID, ColClaimed, ColAgreed, ColDepreciationDiff}},
	RuleHighValue:                  {orderCols: []string{ColOrderID, ColAgreed}},
	RuleProforma:                   {orderCols: []string{ColOrderID, ColAgreed}},
	RuleSignTriple:                 {orderCols: []string{ColOrderID, ColClaimed, ColRecommended, ColAgreed}},
	RulePositionSigns:              {positionCols: []string{ColPositionID, ColQuantity, ColAgreedQuantity, ColUnitPrice, ColAgreedUnitPrice, ColClaimed, ColAgreed}},
	RuleDiscount:                   {positionCols: []string{ColPositionID, ColAgreed, ColDescription}},
	RuleReconciliation:             {orderCols: []string{ColOrderID, ColClaimed, ColAgreed}, positionCols: []string{ColOrderID, ColClaimed, ColAgreed}},
	RuleEmptyOrders:                {orderCols: []string{ColOrderID, ColPositionCount}},
	RuleTestData:                   {orderCols: []string{ColOrderID, ColCustomerGroup}},
	RuleUniqueness:                 {orderCols: []string{ColOrderID}, positionCols: []string{ColPositionID}},
	RulePositionsOverTime:          {orderCols: []string{ColOrderID, ColReceivedAt}, positionCols: []string{ColOrderID}},
}

// Applicability is the typed outcome of the one-time schema capability check.
type Applicability struct {
	applicable map[RuleID]bool
	Skipped    []RuleID
}

func (a Applicability) Applies(id RuleID) bool {
	return a.applicable[id]
}

// CheckSchema determines once which rules the delivered schemas support.
// Skipped rules yield zero results and a warning instead of aborting the run.
func CheckSchema(ctx context.Context, orders domain.OrderSet, positions domain.PositionSet) Applicability {
	logger := zerolog.Ctx(ctx)
	result := Applicability{applicable: make(map[RuleID]bool, len(ruleRequirements))}

	for id, req := range ruleRequirements {
		ok := orders.Columns.Has(req.orderCols...) && positions.Columns.Has(req.positionCols...)
		result.applicable[id] = ok
		if !ok {
			result.Skipped = append(result.Skipped, id)
		}
	}
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i] < result.Skipped[j] })
	for _, id := range result.Skipped {
		logger.Warn().
			Str("rule", string(id)).
			Msg("required columns missing, rule skipped")
	}
	return result
}
