package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sharppicks/parlay-engine/internal/model"
)

var lineNumber = regexp.MustCompile(`-?[0-9]+(\.[0-9]+)?`)

// gradeLeg grades a pending leg against its matched game's final scores.
// ok is false when the leg cannot be graded from score data alone (props,
// unparseable lines, missing scores); such legs stay pending.
func gradeLeg(leg model.Leg, game *model.CompletedGame) (result model.LegResult, ok bool) {
	teamScore, oppScore, found := legScores(leg, game)
	if !found {
		return model.LegPending, false
	}

	switch leg.BetType {
	case model.BetTypeMoneyline:
		switch {
		case teamScore > oppScore:
			return model.LegWon, true
		case teamScore < oppScore:
			return model.LegLost, true
		default:
			return model.LegPush, true
		}

	case model.BetTypeSpread:
		line, parsed := parseLine(leg.Line)
		if !parsed {
			return model.LegPending, false
		}
		adjusted := teamScore + line
		switch {
		case adjusted > oppScore:
			return model.LegWon, true
		case adjusted < oppScore:
			return model.LegLost, true
		default:
			return model.LegPush, true
		}

	case model.BetTypeTotals:
		line, parsed := parseLine(leg.Line)
		if !parsed {
			return model.LegPending, false
		}
		over, directed := totalsDirection(leg)
		if !directed {
			return model.LegPending, false
		}
		combined := teamScore + oppScore
		switch {
		case combined == line:
			return model.LegPush, true
		case (combined > line) == over:
			return model.LegWon, true
		default:
			return model.LegLost, true
		}

	default:
		// Player props cannot be graded from team scores; an external
		// stats feed would have to resolve them.
		return model.LegPending, false
	}
}

// legScores maps the game's two scores onto the leg's team and opponent.
func legScores(leg model.Leg, game *model.CompletedGame) (teamScore, oppScore float64, ok bool) {
	home, homeOK := game.ScoreFor(game.HomeTeam)
	away, awayOK := game.ScoreFor(game.AwayTeam)
	if !homeOK || !awayOK {
		return 0, 0, false
	}
	if sideMatches(leg.Team, game.HomeTeam) {
		return home, away, true
	}
	if sideMatches(leg.Team, game.AwayTeam) {
		return away, home, true
	}
	return 0, 0, false
}

// parseLine extracts the numeric line from text like "-5.5" or "Over 210.5".
func parseLine(line string) (float64, bool) {
	m := lineNumber.FindString(line)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// totalsDirection reads over/under from the line text, falling back to the
// team field where some books put it.
func totalsDirection(leg model.Leg) (over, ok bool) {
	for _, s := range []string{leg.Line, leg.Team} {
		ls := strings.ToLower(s)
		if strings.Contains(ls, "over") {
			return true, true
		}
		if strings.Contains(ls, "under") {
			return false, true
		}
	}
	return false, false
}
