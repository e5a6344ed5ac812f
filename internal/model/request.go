package model

// GenerationRequest captures one parlay request. It is treated as immutable:
// pipeline stages that need a variant (e.g. prop fallback) return a copy
// rather than mutating the original.
type GenerationRequest struct {
	UserID    string     `json:"user_id,omitempty"`
	RiskLevel int        `json:"risk_level"`
	NumLegs   int        `json:"num_legs"`
	BetTypes  []BetType  `json:"bet_types"`
	Sports    []string   `json:"sports"`
	Type      ParlayType `json:"type"`
	IsDaily   bool       `json:"is_daily"`
	DailyDate string     `json:"daily_date,omitempty"`
}

// WithBetTypes returns a copy of the request with the bet types replaced.
func (r GenerationRequest) WithBetTypes(types []BetType) GenerationRequest {
	out := r
	out.BetTypes = append([]BetType(nil), types...)
	return out
}

// IncludesProps reports whether the request asks for any prop market.
func (r GenerationRequest) IncludesProps() bool {
	return ContainsProps(r.BetTypes)
}

// Validate applies basic range checks before the pipeline runs.
func (r GenerationRequest) Validate() *ValidationFailure {
	if r.RiskLevel < 1 || r.RiskLevel > 10 {
		return NewFailure(FailBadRequest, "risk level must be between 1 and 10")
	}
	if r.NumLegs < 1 || r.NumLegs > 10 {
		return NewFailure(FailBadRequest, "number of legs must be between 1 and 10")
	}
	if len(r.BetTypes) == 0 {
		return NewFailure(FailBadRequest, "at least one bet type is required")
	}
	if len(r.Sports) == 0 {
		return NewFailure(FailBadRequest, "at least one sport is required")
	}
	return nil
}
