package model

import "time"

// LegResult is the settled outcome of a single leg. Legs start pending and
// transition exactly once; push covers totals landing exactly on the line.
type LegResult string

const (
	LegPending LegResult = "pending"
	LegWon     LegResult = "won"
	LegLost    LegResult = "lost"
	LegPush    LegResult = "push"
)

// ParlayResult is derived from leg results: lost if any leg lost, won once
// every leg is settled without a loss, pending otherwise.
type ParlayResult string

const (
	ParlayPending ParlayResult = "pending"
	ParlayWon     ParlayResult = "won"
	ParlayLost    ParlayResult = "lost"
)

// ParlayType tags how a parlay was produced.
type ParlayType string

const (
	ParlayTypeCustom   ParlayType = "custom"
	ParlayTypeSafe     ParlayType = "safe"
	ParlayTypeBalanced ParlayType = "balanced"
	ParlayTypeRisky    ParlayType = "risky"
)

// ProposedLeg is one selection returned by the leg selector, before
// validation. Odds is kept as a sign-normalized American string ("+150",
// "-110"). Sport and GameTime are injected from the matched game record
// after the leg is accepted.
type ProposedLeg struct {
	GameID     string `json:"game_id"`
	Team       string `json:"team"`
	Opponent   string `json:"opponent,omitempty"`
	Player     string `json:"player,omitempty"`
	BetType    string `json:"bet_type"`
	Line       string `json:"line,omitempty"`
	Odds       string `json:"odds"`
	Sportsbook string `json:"sportsbook,omitempty"`
	Reasoning  string `json:"reasoning"`

	Sport    string     `json:"sport,omitempty"`
	GameTime *time.Time `json:"game_time,omitempty"`
}

// Leg is a persisted parlay leg.
type Leg struct {
	ID         string     `json:"id"`
	ParlayID   string     `json:"parlay_id"`
	GameID     string     `json:"game_id"`
	Team       string     `json:"team"`
	Opponent   string     `json:"opponent"`
	Player     string     `json:"player,omitempty"`
	BetType    BetType    `json:"bet_type"`
	Line       string     `json:"line,omitempty"`
	Odds       string     `json:"odds"`
	Sportsbook string     `json:"sportsbook,omitempty"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Sport      string     `json:"sport"`
	GameTime   *time.Time `json:"game_time,omitempty"`
	Result     LegResult  `json:"result"`
}

// Parlay is an accepted set of legs plus derived pricing. TotalOdds is
// always recomputed from the legs, never taken from the model.
type Parlay struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id,omitempty"`
	Legs       []Leg        `json:"legs"`
	TotalOdds  string       `json:"total_odds"`
	Confidence int          `json:"confidence"`
	RiskLevel  int          `json:"risk_level"`
	BetTypes   []BetType    `json:"bet_types"`
	Sports     []string     `json:"sports"`
	Type       ParlayType   `json:"type"`
	IsDaily    bool         `json:"is_daily"`
	DailyDate  string       `json:"daily_date,omitempty"` // YYYY-MM-DD cycle bucket
	Result     ParlayResult `json:"result"`
	CreatedAt  time.Time    `json:"created_at"`
}

// GenerationResult is what the pipeline hands back to its caller.
type GenerationResult struct {
	Legs       []ProposedLeg `json:"legs"`
	TotalOdds  string        `json:"totalOdds"`
	Confidence int           `json:"confidence"`
	ParlayID   string        `json:"parlayId,omitempty"`
}

// DailyOutcome reports one archetype's result within a daily batch.
type DailyOutcome struct {
	Type     ParlayType `json:"type"`
	Success  bool       `json:"success"`
	ParlayID string     `json:"parlayId,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// ResolveSummary counts one result-resolver pass.
type ResolveSummary struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
	Won      int `json:"won"`
	Lost     int `json:"lost"`
}
