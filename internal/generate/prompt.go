package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/oddsmath"
)

const selectorSystemPrompt = `You are a professional sports betting analyst. You build parlays strictly from the odds data supplied in the user message. Respond with a single valid JSON object and nothing else, in this exact shape:
{"legs": [{"game_id": "<id from data>", "team": "<team name>", "opponent": "<other team>", "player": "<player name or omit>", "bet_type": "<moneyline|spread|totals|player_props>", "line": "<threshold text, never the price>", "odds": "<american odds, e.g. +150 or -120>", "sportsbook": "<book key from data>", "reasoning": "<under 15 words>"}]}`

// Risk-band behavioral rules keyed by the 1-10 risk dial. Boundaries follow
// the banding used everywhere else: 1-3 safe, 4-7 balanced, 8-10 risky.
func riskRules(risk int) string {
	switch {
	case risk <= 3:
		return `RISK PROFILE (safe, ` + fmt.Sprint(risk) + `/10): pick heavy favorites and low-threshold props on star players. Prefer odds of -150 or stronger favorites. Never pick a leg priced worse than -125.`
	case risk <= 7:
		return `RISK PROFILE (balanced, ` + fmt.Sprint(risk) + `/10): pick moderate thresholds and near-even odds, roughly -200 to +150. Mix a favorite or two with a value pick.`
	default:
		return `RISK PROFILE (risky, ` + fmt.Sprint(risk) + `/10): favor underdogs, high prop thresholds, and bench or secondary players. Avoid heavy favorites stronger than -130 except on spread or totals legs.`
	}
}

// promptGame is the minified odds snapshot embedded in the prompt. Field
// names are short on purpose to keep prompt tokens down.
type promptGame struct {
	ID      string         `json:"id"`
	Sport   string         `json:"sport"`
	Home    string         `json:"home"`
	Away    string         `json:"away"`
	Start   string         `json:"start"`
	Book    string         `json:"book"`
	Markets []promptMarket `json:"markets"`
}

type promptMarket struct {
	Key      string          `json:"key"`
	Outcomes []promptOutcome `json:"outcomes"`
}

type promptOutcome struct {
	Name       string   `json:"name"`
	Odds       string   `json:"odds"`
	Point      *float64 `json:"point,omitempty"`
	Player     string   `json:"player,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

func compactGames(games []model.Game) []promptGame {
	out := make([]promptGame, 0, len(games))
	for _, g := range games {
		pg := promptGame{
			ID:    g.ID,
			Sport: g.SportKey,
			Home:  g.HomeTeam,
			Away:  g.AwayTeam,
			Start: g.CommenceTime.UTC().Format("2006-01-02T15:04Z"),
		}
		for _, b := range g.Bookmakers {
			pg.Book = b.Key
			for _, m := range b.Markets {
				pm := promptMarket{Key: m.Key}
				for _, o := range m.Outcomes {
					po := promptOutcome{
						Name:   o.Name,
						Odds:   oddsmath.FormatAmerican(int(o.Price)),
						Point:  o.Point,
						Player: o.Player,
					}
					if o.Importance != "" && o.Importance != model.ImportanceUnknown {
						po.Importance = string(o.Importance)
					}
					if o.Difficulty != "" {
						po.Difficulty = string(o.Difficulty)
					}
					pm.Outcomes = append(pm.Outcomes, po)
				}
				pg.Markets = append(pg.Markets, pm)
			}
			break
		}
		out = append(out, pg)
	}
	return out
}

// buildPrompt assembles the user message for one selection attempt. When
// priorFailure is non-nil the previous attempt's violation is appended so the
// model can correct itself.
func buildPrompt(req model.GenerationRequest, games []model.Game, priorFailure *model.ValidationFailure) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Build a parlay with EXACTLY %d leg(s).\n\n", req.NumLegs)
	sb.WriteString(riskRules(req.RiskLevel))
	sb.WriteString("\n\n")

	types := make([]string, len(req.BetTypes))
	for i, bt := range req.BetTypes {
		types[i] = string(bt)
	}
	fmt.Fprintf(&sb, "ALLOWED BET TYPES: %s.", strings.Join(types, ", "))
	if len(req.BetTypes) > 1 {
		sb.WriteString(" Mix the bet types across legs; do not return a single type.")
	}
	sb.WriteString("\n")

	if len(req.Sports) > 1 {
		fmt.Fprintf(&sb, "SPORTS: %s. Include at least one leg from each sport.\n", strings.Join(req.Sports, ", "))
	}

	sb.WriteString(`
RULES:
- Use ONLY games, players, and odds from the DATA block below. Never invent a player prop; if a prop you want is not in the data, fall back to a standard bet type instead.
- "line" is the threshold text (e.g. "Over 24.5", "-5.5"), never the odds price.
- Every leg must carry the game_id, team, opponent, sportsbook, and odds exactly as they appear in the data.
- No two legs may use the same game.
- Keep each "reasoning" under 15 words.
`)

	data, _ := json.Marshal(compactGames(games))
	sb.WriteString("\nDATA:\n")
	sb.Write(data)
	sb.WriteString("\n")

	if priorFailure != nil {
		fmt.Fprintf(&sb, "\nYOUR PREVIOUS ANSWER WAS REJECTED: %s\nFix this specific problem and return a corrected JSON object.\n", priorFailure.Message)
	}

	return sb.String()
}
