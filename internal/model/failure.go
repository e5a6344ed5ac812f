package model

import "fmt"

// FailureCode identifies which validation rule a candidate parlay broke.
type FailureCode string

const (
	FailBadRequest    FailureCode = "bad_request"
	FailParse         FailureCode = "parse"
	FailLegCount      FailureCode = "leg_count"
	FailBetType       FailureCode = "bet_type"
	FailOdds          FailureCode = "odds"
	FailReasoning     FailureCode = "reasoning"
	FailRiskRange     FailureCode = "risk_range"
	FailDuplicateGame FailureCode = "duplicate_game"
	FailUnknownGame   FailureCode = "unknown_game"
	FailTeamMismatch  FailureCode = "team_mismatch"
)

// ValidationFailure is a typed validation verdict. Message is human-readable
// and is fed back into the next prompt attempt so the model can self-correct.
type ValidationFailure struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`
}

// NewFailure builds a failure with a formatted message.
func NewFailure(code FailureCode, format string, args ...any) *ValidationFailure {
	return &ValidationFailure{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (f *ValidationFailure) Error() string {
	return f.Message
}
