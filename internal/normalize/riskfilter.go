package normalize

import (
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// Price cutoffs for risk-band pre-filtering of standard markets. Prop odds
// cluster near even money regardless of difficulty, so the filter only
// applies when no prop market was requested.
const (
	// lowRiskMaxPrice keeps favorites and mild underdogs for risk <= 4.
	lowRiskMaxPrice = 150
	// highRiskMinPrice keeps underdogs only for risk >= 7.
	highRiskMinPrice = 100
)

// ApplyRiskFilter prunes outcomes outside the price range implied by the
// requested risk level. The input dataset is deep-cloned first so the
// original fetch stays reusable by other archetypes. Risk 5-6 (or a request
// that includes props) returns the clone untouched.
func ApplyRiskFilter(games []model.Game, riskLevel int, includesProps bool) []model.Game {
	cloned := CloneGames(games)
	if includesProps || (riskLevel >= 5 && riskLevel <= 6) {
		return cloned
	}

	keep := func(price float64) bool {
		if riskLevel <= 4 {
			return price <= lowRiskMaxPrice
		}
		return price >= highRiskMinPrice
	}

	var out []model.Game
	dropped := 0
	for _, g := range cloned {
		var books []model.Bookmaker
		for _, b := range g.Bookmakers {
			var markets []model.Market
			for _, m := range b.Markets {
				var outcomes []model.Outcome
				for _, o := range m.Outcomes {
					if keep(o.Price) {
						outcomes = append(outcomes, o)
					} else {
						dropped++
					}
				}
				if len(outcomes) > 0 {
					m.Outcomes = outcomes
					markets = append(markets, m)
				}
			}
			if len(markets) > 0 {
				b.Markets = markets
				books = append(books, b)
			}
		}
		if len(books) > 0 {
			g.Bookmakers = books
			out = append(out, g)
		}
	}

	zap.L().Debug("normalize: risk filter applied",
		zap.Int("risk_level", riskLevel),
		zap.Int("games_in", len(cloned)),
		zap.Int("games_out", len(out)),
		zap.Int("outcomes_dropped", dropped),
	)
	return out
}

// CloneGames deep-copies a games dataset down to the outcome level.
func CloneGames(games []model.Game) []model.Game {
	out := make([]model.Game, len(games))
	for i, g := range games {
		out[i] = g
		out[i].Bookmakers = make([]model.Bookmaker, len(g.Bookmakers))
		for j, b := range g.Bookmakers {
			out[i].Bookmakers[j] = b
			out[i].Bookmakers[j].Markets = make([]model.Market, len(b.Markets))
			for k, m := range b.Markets {
				out[i].Bookmakers[j].Markets[k] = m
				out[i].Bookmakers[j].Markets[k].Outcomes = append([]model.Outcome(nil), m.Outcomes...)
			}
		}
	}
	return out
}
