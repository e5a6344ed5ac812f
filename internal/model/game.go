package model

import "time"

// Game is one sporting event as returned by the odds provider, with its
// nested bookmaker quotes. Games are re-fetched each generation cycle and
// never persisted directly.
type Game struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one sportsbook's quotes for a game.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market (h2h, spreads, totals, player_points, ...) offered
// by a bookmaker.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// ImportanceTier classifies a prop outcome's player by relative position
// within its market: bookmakers list headline players first.
type ImportanceTier string

const (
	ImportanceStar    ImportanceTier = "star"
	ImportanceStarter ImportanceTier = "starter"
	ImportanceBench   ImportanceTier = "bench"
	ImportanceUnknown ImportanceTier = "unknown"
)

// DifficultyTier buckets a prop threshold by how hard it is to clear.
type DifficultyTier string

const (
	DifficultyVeryEasy DifficultyTier = "very_easy"
	DifficultyEasy     DifficultyTier = "easy"
	DifficultyModerate DifficultyTier = "moderate"
	DifficultyHard     DifficultyTier = "hard"
	DifficultyVeryHard DifficultyTier = "very_hard"
	DifficultyUnknown  DifficultyTier = "unknown"
)

// DifficultyRank orders difficulty tiers from easiest (0) to hardest (4).
// Unknown ranks -1.
func DifficultyRank(d DifficultyTier) int {
	switch d {
	case DifficultyVeryEasy:
		return 0
	case DifficultyEasy:
		return 1
	case DifficultyModerate:
		return 2
	case DifficultyHard:
		return 3
	case DifficultyVeryHard:
		return 4
	default:
		return -1
	}
}

// Outcome is one selectable bet within a market. The Player, Threshold,
// Importance and Difficulty fields are derived during normalization and are
// never part of the provider payload.
type Outcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`

	Player     string         `json:"player,omitempty"`
	Threshold  *float64       `json:"threshold,omitempty"`
	Importance ImportanceTier `json:"importance,omitempty"`
	Difficulty DifficultyTier `json:"difficulty,omitempty"`
}

// CompletedGame is a finished game with final scores, from the scores feed.
// Used only for resolution.
type CompletedGame struct {
	ID        string      `json:"id"`
	SportKey  string      `json:"sport_key"`
	HomeTeam  string      `json:"home_team"`
	AwayTeam  string      `json:"away_team"`
	Completed bool        `json:"completed"`
	Scores    []TeamScore `json:"scores"`
}

// TeamScore pairs a team name with its final score.
type TeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// ScoreFor returns the numeric score for the side whose name matches exactly.
func (g CompletedGame) ScoreFor(team string) (float64, bool) {
	for _, s := range g.Scores {
		if s.Name == team {
			return parseScore(s.Score)
		}
	}
	return 0, false
}

func parseScore(s string) (float64, bool) {
	var v float64
	var ok bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return v, ok
		}
		v = v*10 + float64(c-'0')
		ok = true
	}
	return v, ok
}
