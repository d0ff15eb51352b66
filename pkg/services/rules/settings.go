package rules

// Settings contains the configurable thresholds of the rule catalogue.
type Settings struct {
	// HighValueThreshold flags agreed amounts at or above this value for
	// manual review (default: 50000).
	HighValueThreshold float64
	// ProformaLower/ProformaUpper bound the inclusive interval of likely
	// placeholder receipts (default: 0.01 to 1).
	ProformaLower float64
	ProformaUpper float64
	// DiscountKeywords mark a position description as a discount line
	// (case-insensitive substring match).
	DiscountKeywords []string
	// TopErrorSources is the number of description groups reported by the
	// discount detail breakdown (default: 10).
	TopErrorSources int
}

// DefaultSettings returns the business defaults used in production.
func DefaultSettings() Settings {
	return Settings{
		HighValueThreshold: 50000,
		ProformaLower:      0.01,
		ProformaUpper:      1,
		DiscountKeywords: []string{
			"Rabatt", "Skonto", "Nachlass", "Gutschrift", "Bonus", "Abzug",
			"Minderung", "Gutschein", "Erlass", "Storno", "Kulanz",
		},
		TopErrorSources: 10,
	}
}
