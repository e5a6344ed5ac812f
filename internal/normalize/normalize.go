// Package normalize shapes raw bookmaker feeds into the compact,
// enrichment-annotated dataset the leg selector consumes.
package normalize

import (
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// maxGames caps how many games get forwarded to the model so the prompt
// stays bounded.
const maxGames = 15

// preferredBooks is the shortlist of high-liquidity sportsbooks tried
// before falling back to whichever bookmaker qualifies first.
var preferredBooks = []string{"draftkings", "fanduel", "betmgm", "caesars"}

// PrepareGames selects one qualifying bookmaker per game, strips markets
// outside the requested bet types, enriches every surviving outcome, and
// caps the result. Pure transform: no data in yields an empty slice, never
// an error.
func PrepareGames(games []model.Game, betTypes []model.BetType) []model.Game {
	var out []model.Game
	for _, g := range games {
		bk, ok := pickBookmaker(g.Bookmakers, betTypes)
		if !ok {
			continue
		}
		markets := filterMarkets(bk.Markets, betTypes)
		if len(markets) == 0 {
			continue
		}
		for i := range markets {
			EnrichMarket(&markets[i])
		}
		g.Bookmakers = []model.Bookmaker{{Key: bk.Key, Title: bk.Title, Markets: markets}}
		out = append(out, g)
		if len(out) == maxGames {
			break
		}
	}
	if len(out) == 0 {
		zap.L().Debug("normalize: no games qualified", zap.Int("input_games", len(games)))
	}
	return out
}

// pickBookmaker chooses the bookmaker to quote a game from: the first
// preferred book that carries a requested market, else the first qualifying
// one of any kind.
func pickBookmaker(books []model.Bookmaker, betTypes []model.BetType) (model.Bookmaker, bool) {
	qualifies := func(b model.Bookmaker) bool {
		for _, m := range b.Markets {
			for _, bt := range betTypes {
				if bt.MatchesMarket(m.Key) {
					return true
				}
			}
		}
		return false
	}

	for _, pref := range preferredBooks {
		for _, b := range books {
			if b.Key == pref && qualifies(b) {
				return b, true
			}
		}
	}
	for _, b := range books {
		if qualifies(b) {
			return b, true
		}
	}
	return model.Bookmaker{}, false
}

// filterMarkets keeps deep copies of the markets matching a requested bet type.
func filterMarkets(markets []model.Market, betTypes []model.BetType) []model.Market {
	var out []model.Market
	for _, m := range markets {
		for _, bt := range betTypes {
			if bt.MatchesMarket(m.Key) {
				cp := m
				cp.Outcomes = append([]model.Outcome(nil), m.Outcomes...)
				out = append(out, cp)
				break
			}
		}
	}
	return out
}

// FindGame looks a game up by provider id. Returns nil when the id is not
// in the dataset.
func FindGame(games []model.Game, id string) *model.Game {
	for i := range games {
		if games[i].ID == id {
			return &games[i]
		}
	}
	return nil
}
