package outlier

import (
	"strings"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

// TradeKeywords maps one trade to the German name fragments that typically
// identify it in a company name. The catalogue is ordered: conflict
// resolution takes the first other trade whose keyword matches.
type TradeKeywords struct {
	Trade    string
	Keywords []string
}

// DefaultTradeKeywords is the built-in trade keyword catalogue; overridable
// through configuration.
func DefaultTradeKeywords() []TradeKeywords {
	return []TradeKeywords{
		{"Elektro", []string{"elektro", "elektrik", "elektrotechnik", "blitzschutz"}},
		{"Sanitär", []string{"sanitär", "sanitaer", "rohr", "installateur", "bad"}},
		{"Heizung", []string{"heizung", "heizungsbau", "wärmetechnik", "waermetechnik"}},
		{"Maler", []string{"maler", "lackier", "anstrich"}},
		{"Dachdecker", []string{"dach", "bedachung"}},
		{"Tischler", []string{"tischler", "schreiner", "holzbau"}},
		{"Glaser", []string{"glas", "glaserei"}},
		{"Trocknung", []string{"trocknung", "bautrocknung", "wasserschaden"}},
		{"Gebäudereinigung", []string{"reinigung", "gebäudereinigung", "gebaeudereinigung"}},
		{"KFZ", []string{"kfz", "autohaus", "fahrzeug", "karosserie"}},
	}
}

// AnnotateKeywords fills KeywordResult on each stat: CONFIRMED_BY_NAME when
// the craftsman's name matches a keyword of its own declared trade,
// CONFLICT_WITH_<TRADE> when it instead matches another trade, and
// NO_KEYWORD_INFO otherwise. This is decision support for the reviewer, not
// a detector of its own.
func AnnotateKeywords(stats []domain.TradeStat, catalogue []TradeKeywords) {
	for i := range stats {
		stats[i].KeywordResult = classifyName(stats[i].Craftsman, stats[i].Trade, catalogue)
	}
}

func classifyName(craftsman, trade string, catalogue []TradeKeywords) string {
	name := strings.ToLower(craftsman)

	for _, tk := range catalogue {
		if tk.Trade != trade {
			continue
		}
		for _, kw := range tk.Keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return domain.KeywordConfirmed
			}
		}
	}

	for _, tk := range catalogue {
		if tk.Trade == trade {
			continue
		}
		for _, kw := range tk.Keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return domain.KeywordConflictPrefix + tk.Trade
			}
		}
	}

	return domain.KeywordNoInfo
}
