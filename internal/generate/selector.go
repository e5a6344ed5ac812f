package generate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/config"
	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/oddsmath"
	"github.com/sharppicks/parlay-engine/pkg/anthropic"
)

const selectorTemperature = 0.7

// selector drives one model call per attempt. It is stateless; the repair
// loop re-invokes it with a prompt that carries the prior violation.
type selector struct {
	ai  anthropic.Client
	cfg config.AnthropicConfig
}

type legsEnvelope struct {
	Legs []model.ProposedLeg `json:"legs"`
}

// propose sends one selection prompt and parses the proposed legs out of the
// response. The call races a wall-clock timeout so a stalled response fails
// the attempt instead of hanging the loop.
func (s *selector) propose(ctx context.Context, prompt string) ([]model.ProposedLeg, error) {
	timeout := time.Duration(s.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temp := selectorTemperature
	resp, err := s.ai.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		System:      selectorSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "generate: model call")
	}
	resp.Usage.LogCost(s.cfg.Model, "leg_selection")

	legs, err := parseLegs(resp.Text())
	if err != nil {
		return nil, err
	}

	zap.L().Debug("model proposed legs", zap.Int("count", len(legs)))
	return legs, nil
}

// parseLegs extracts the first JSON object from the response text and decodes
// the proposed legs, normalizing every odds value to carry an explicit sign.
func parseLegs(text string) ([]model.ProposedLeg, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("generate: no JSON object in model response")
	}

	var env legsEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, eris.Wrap(err, "generate: unmarshal model response")
	}
	if len(env.Legs) == 0 {
		return nil, eris.New("generate: model response contained no legs")
	}

	for i := range env.Legs {
		env.Legs[i].Odds = oddsmath.NormalizeSign(env.Legs[i].Odds)
		if bt, ok := model.NormalizeBetType(env.Legs[i].BetType); ok {
			env.Legs[i].BetType = string(bt)
		}
	}
	return env.Legs, nil
}

// cleanJSON extracts a JSON object from text that may contain markdown code
// fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
