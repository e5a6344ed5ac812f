package generate

import (
	"strings"

	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/normalize"
	"github.com/sharppicks/parlay-engine/internal/oddsmath"
)

// Risk-band odds cutoffs.
const (
	safeWorstPrice     = -125  // risk <=3: reject anything closer to even than this
	balancedFloorPrice = -1000 // risk 4-7: reject extreme favorites below this
	riskyFloorPrice    = -130  // risk >=8: reject favorites below this unless spread/totals
)

// validateLegs runs the ordered rule set against one candidate. The first
// failure short-circuits; its message is fed back into the next prompt.
// Opponent is the one field auto-filled from the matched game when omitted.
func validateLegs(legs []model.ProposedLeg, games []model.Game, req model.GenerationRequest) *model.ValidationFailure {
	if len(legs) != req.NumLegs {
		return model.NewFailure(model.FailLegCount,
			"expected exactly %d legs, got %d", req.NumLegs, len(legs))
	}

	requested := make(map[model.BetType]bool, len(req.BetTypes))
	for _, bt := range req.BetTypes {
		requested[bt] = true
	}

	for i := range legs {
		leg := &legs[i]

		bt, ok := model.NormalizeBetType(leg.BetType)
		if !ok || !requested[bt] {
			return model.NewFailure(model.FailBetType,
				"leg %d bet_type %q is not among the requested types", i+1, leg.BetType)
		}
		leg.BetType = string(bt)

		price, err := oddsmath.ParseAmerican(leg.Odds)
		if err != nil {
			return model.NewFailure(model.FailOdds,
				"leg %d odds %q is not a numeric American price", i+1, leg.Odds)
		}

		if len(strings.TrimSpace(leg.Reasoning)) < 10 {
			return model.NewFailure(model.FailReasoning,
				"leg %d reasoning is too short; explain the pick in a sentence", i+1)
		}

		if f := checkRiskRange(i, bt, price, req.RiskLevel); f != nil {
			return f
		}
	}

	seen := make(map[string]bool, len(legs))
	for i, leg := range legs {
		if seen[leg.GameID] {
			return model.NewFailure(model.FailDuplicateGame,
				"leg %d reuses game %s; every leg must come from a different game", i+1, leg.GameID)
		}
		seen[leg.GameID] = true
	}

	for i := range legs {
		leg := &legs[i]
		game := normalize.FindGame(games, leg.GameID)
		if game == nil {
			return model.NewFailure(model.FailUnknownGame,
				"leg %d references game id %q which is not in the supplied data", i+1, leg.GameID)
		}
		if f := checkTeams(i, leg, game); f != nil {
			return f
		}
	}

	return nil
}

func checkRiskRange(i int, bt model.BetType, price float64, risk int) *model.ValidationFailure {
	switch {
	case risk <= 3:
		if price > safeWorstPrice {
			return model.NewFailure(model.FailRiskRange,
				"leg %d odds %+.0f are too close to even for risk %d; pick favorites of %d or stronger",
				i+1, price, risk, safeWorstPrice)
		}
	case risk <= 7:
		if price < balancedFloorPrice {
			return model.NewFailure(model.FailRiskRange,
				"leg %d odds %+.0f are an extreme favorite with no value for risk %d", i+1, price, risk)
		}
	default:
		if price < riskyFloorPrice && bt != model.BetTypeSpread && bt != model.BetTypeTotals {
			return model.NewFailure(model.FailRiskRange,
				"leg %d odds %+.0f are too heavy a favorite for risk %d; pick underdogs or value lines",
				i+1, price, risk)
		}
	}
	return nil
}

// checkTeams verifies team/opponent against the matched game's two sides,
// auto-filling a missing opponent from the other side.
func checkTeams(i int, leg *model.ProposedLeg, game *model.Game) *model.ValidationFailure {
	var other string
	switch {
	case teamMatches(leg.Team, game.HomeTeam):
		other = game.AwayTeam
	case teamMatches(leg.Team, game.AwayTeam):
		other = game.HomeTeam
	default:
		return model.NewFailure(model.FailTeamMismatch,
			"leg %d team %q is not playing in game %s (%s vs %s)",
			i+1, leg.Team, game.ID, game.AwayTeam, game.HomeTeam)
	}

	if strings.TrimSpace(leg.Opponent) == "" {
		leg.Opponent = other
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(leg.Team), strings.TrimSpace(leg.Opponent)) {
		return model.NewFailure(model.FailTeamMismatch,
			"leg %d team and opponent are both %q", i+1, leg.Team)
	}
	if !teamMatches(leg.Opponent, other) {
		return model.NewFailure(model.FailTeamMismatch,
			"leg %d opponent %q does not match the other side of game %s (%s)",
			i+1, leg.Opponent, game.ID, other)
	}
	return nil
}

// teamMatches accepts an exact (case-insensitive) match or the leg's value
// appearing as a substring of the full game name ("Celtics" vs
// "Boston Celtics").
func teamMatches(legTeam, gameTeam string) bool {
	lt := strings.ToLower(strings.TrimSpace(legTeam))
	gt := strings.ToLower(strings.TrimSpace(gameTeam))
	if lt == "" || gt == "" {
		return false
	}
	return lt == gt || strings.Contains(gt, lt)
}
