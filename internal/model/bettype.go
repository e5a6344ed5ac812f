package model

import "strings"

// BetType identifies the kind of wager a leg represents.
type BetType string

const (
	BetTypeMoneyline   BetType = "moneyline"
	BetTypeSpread      BetType = "spread"
	BetTypeTotals      BetType = "totals"
	BetTypePlayerProps BetType = "player_props"
)

// betTypeSynonyms maps the loose labels the model (and upstream callers)
// produce onto canonical bet types.
var betTypeSynonyms = map[string]BetType{
	"moneyline":    BetTypeMoneyline,
	"h2h":          BetTypeMoneyline,
	"spread":       BetTypeSpread,
	"spreads":      BetTypeSpread,
	"totals":       BetTypeTotals,
	"total":        BetTypeTotals,
	"over/under":   BetTypeTotals,
	"over_under":   BetTypeTotals,
	"player_props": BetTypePlayerProps,
	"player_prop":  BetTypePlayerProps,
	"prop":         BetTypePlayerProps,
	"props":        BetTypePlayerProps,
}

// NormalizeBetType canonicalizes a bet type label. The second return is
// false when the label maps to nothing we grade.
func NormalizeBetType(s string) (BetType, bool) {
	bt, ok := betTypeSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return bt, ok
}

// MarketKey returns the odds-provider market key for a bet type.
// Player props span many provider keys; MatchesMarket handles those.
func (b BetType) MarketKey() string {
	switch b {
	case BetTypeMoneyline:
		return "h2h"
	case BetTypeSpread:
		return "spreads"
	case BetTypeTotals:
		return "totals"
	default:
		return ""
	}
}

// MatchesMarket reports whether a provider market key belongs to this bet type.
func (b BetType) MatchesMarket(marketKey string) bool {
	if b == BetTypePlayerProps {
		return strings.HasPrefix(marketKey, "player")
	}
	return marketKey == b.MarketKey()
}

// ContainsProps reports whether any requested bet type is prop-like.
func ContainsProps(types []BetType) bool {
	for _, t := range types {
		if t == BetTypePlayerProps {
			return true
		}
	}
	return false
}
