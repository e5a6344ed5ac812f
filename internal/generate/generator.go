// Package generate drives the parlay pipeline: normalize odds, prompt the
// model for legs, validate and repair the response, price the accepted
// parlay, and persist it.
package generate

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/config"
	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/normalize"
	"github.com/sharppicks/parlay-engine/internal/oddsmath"
	"github.com/sharppicks/parlay-engine/internal/resilience"
	"github.com/sharppicks/parlay-engine/internal/store"
	"github.com/sharppicks/parlay-engine/pkg/anthropic"
	"github.com/sharppicks/parlay-engine/pkg/oddsapi"
)

// ErrUnavailable is returned when the model provider is down or out of
// quota. Callers surface it as-is; no fabricated picks.
var ErrUnavailable = eris.New("AI analysis is temporarily unavailable")

const (
	defaultMaxAttempts = 3
	defaultWindowHours = 48
	maxRateLimitWaits  = 3
	rateLimitBackoff   = 2 * time.Second
	propMarkets        = "player_points,player_rebounds,player_assists,player_shots_on_goal,player_goals,player_pass_yds,player_rush_yds,player_receptions"
)

// Generator owns one end-to-end parlay generation flow.
type Generator struct {
	odds  oddsapi.Client
	db    store.Store
	sel   selector
	cfg   config.GeneratorConfig
	rng   oddsmath.Rand
	sleep func(time.Duration)
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects the confidence-jitter randomness source.
func WithRand(r oddsmath.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithSleep overrides the rate-limit backoff sleeper.
func WithSleep(f func(time.Duration)) Option {
	return func(g *Generator) { g.sleep = f }
}

// New wires a Generator from its collaborators.
func New(odds oddsapi.Client, ai anthropic.Client, db store.Store, cfg config.GeneratorConfig, aiCfg config.AnthropicConfig, opts ...Option) *Generator {
	g := &Generator{
		odds:  odds,
		db:    db,
		sel:   selector{ai: ai, cfg: aiCfg},
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate builds, validates, and persists one parlay for the request.
func (g *Generator) Generate(ctx context.Context, req model.GenerationRequest) (*model.GenerationResult, error) {
	if f := req.Validate(); f != nil {
		return nil, f
	}

	games, err := g.FetchGames(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.GenerateFrom(ctx, req, games)
}

// FetchGames pulls the raw odds snapshot for the request's sports and
// markets over the configured upcoming window.
func (g *Generator) FetchGames(ctx context.Context, req model.GenerationRequest) ([]model.Game, error) {
	window := g.cfg.WindowHours
	if window <= 0 {
		window = defaultWindowHours
	}
	now := time.Now().UTC()

	games, err := g.odds.FetchOdds(ctx, oddsapi.OddsRequest{
		SportKeys: req.Sports,
		Markets:   marketKeysFor(req.BetTypes),
		Region:    g.cfg.Region,
		From:      now,
		To:        now.Add(time.Duration(window) * time.Hour),
	})
	if err != nil {
		return nil, eris.Wrap(err, "generate: fetch odds")
	}
	return games, nil
}

// GenerateFrom runs the pipeline against an already-fetched dataset. The
// daily batch uses this to share one fetch across archetypes.
func (g *Generator) GenerateFrom(ctx context.Context, req model.GenerationRequest, raw []model.Game) (*model.GenerationResult, error) {
	games := normalize.PrepareGames(raw, req.BetTypes)
	if len(games) == 0 {
		if req.IncludesProps() {
			return nil, eris.Errorf("player props are unavailable for %s right now", sportLabel(req.Sports))
		}
		return nil, eris.Errorf("no %s games scheduled in the requested window", sportLabel(req.Sports))
	}

	pool := normalize.ApplyRiskFilter(games, req.RiskLevel, req.IncludesProps())
	if len(pool) == 0 {
		// The price filter can empty the pool at extreme risk levels;
		// fall back to the unfiltered set rather than failing outright.
		pool = games
	}

	legs, err := g.runRepairLoop(ctx, req, pool, games)
	if err != nil {
		return nil, err
	}
	return g.accept(ctx, req, legs, games)
}

// loopState tracks the repair loop. Attempts are strictly sequential: each
// prompt depends on the prior failure.
type loopState int

const (
	statePending loopState = iota
	stateValidating
	stateRepairing
	stateAccepted
	stateExhausted
)

// runRepairLoop drives the selector until a candidate validates or the
// attempt budget is spent. Rate limits back off without consuming an
// attempt; quota or server outages abort immediately.
func (g *Generator) runRepairLoop(ctx context.Context, req model.GenerationRequest, pool, games []model.Game) ([]model.ProposedLeg, error) {
	maxAttempts := g.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var (
		state      = statePending
		legs       []model.ProposedLeg
		failure    *model.ValidationFailure
		attempts   int
		limitWaits int
	)

	for {
		switch state {
		case statePending, stateRepairing:
			if attempts >= maxAttempts {
				state = stateExhausted
				continue
			}
			attempts++

			proposed, err := g.sel.propose(ctx, buildPrompt(req, pool, failure))
			if err != nil {
				switch {
				case resilience.IsUnavailable(err):
					zap.L().Warn("model unavailable, aborting generation", zap.Error(err))
					return nil, ErrUnavailable
				case resilience.IsTransient(err):
					limitWaits++
					if limitWaits > maxRateLimitWaits {
						return nil, ErrUnavailable
					}
					attempts--
					zap.L().Warn("model rate limited, backing off",
						zap.Int("wait", limitWaits))
					g.sleep(rateLimitBackoff)
					continue
				case ctx.Err() != nil:
					return nil, eris.Wrap(ctx.Err(), "generate: cancelled")
				default:
					// Timeouts and malformed responses consume an attempt.
					failure = model.NewFailure(model.FailParse,
						"previous response was not a valid JSON leg list")
					zap.L().Warn("model attempt failed",
						zap.Int("attempt", attempts), zap.Error(err))
					continue
				}
			}
			legs = proposed
			state = stateValidating

		case stateValidating:
			if f := validateLegs(legs, games, req); f != nil {
				failure = f
				state = stateRepairing
				zap.L().Info("candidate rejected",
					zap.Int("attempt", attempts),
					zap.String("code", string(f.Code)),
					zap.String("reason", f.Message))
				continue
			}
			state = stateAccepted

		case stateAccepted:
			return legs, nil

		case stateExhausted:
			if failure == nil {
				return nil, eris.New("generate: no valid parlay produced")
			}
			return nil, eris.Errorf("could not build a valid parlay after %d attempts: %s",
				maxAttempts, failure.Message)
		}
	}
}

// accept prices the validated legs, injects game context, and persists the
// parlay atomically with its legs.
func (g *Generator) accept(ctx context.Context, req model.GenerationRequest, legs []model.ProposedLeg, games []model.Game) (*model.GenerationResult, error) {
	odds := make([]string, len(legs))
	for i := range legs {
		odds[i] = legs[i].Odds
		if game := normalize.FindGame(games, legs[i].GameID); game != nil {
			legs[i].Sport = game.SportKey
			t := game.CommenceTime
			legs[i].GameTime = &t
		}
	}

	total, err := oddsmath.ParlayOdds(odds)
	if err != nil {
		return nil, eris.Wrap(err, "generate: price parlay")
	}
	confidence := oddsmath.Confidence(req.RiskLevel, g.rng)

	parlay := &model.Parlay{
		UserID:     req.UserID,
		TotalOdds:  total,
		Confidence: confidence,
		RiskLevel:  req.RiskLevel,
		BetTypes:   req.BetTypes,
		Sports:     req.Sports,
		Type:       parlayType(req),
		IsDaily:    req.IsDaily,
		DailyDate:  req.DailyDate,
		Result:     model.ParlayPending,
	}
	for _, pl := range legs {
		bt, _ := model.NormalizeBetType(pl.BetType)
		parlay.Legs = append(parlay.Legs, model.Leg{
			GameID:     pl.GameID,
			Team:       pl.Team,
			Opponent:   pl.Opponent,
			Player:     pl.Player,
			BetType:    bt,
			Line:       pl.Line,
			Odds:       pl.Odds,
			Sportsbook: pl.Sportsbook,
			Reasoning:  pl.Reasoning,
			Sport:      pl.Sport,
			GameTime:   pl.GameTime,
			Result:     model.LegPending,
		})
	}

	if err := g.db.CreateParlay(ctx, parlay); err != nil {
		return nil, eris.Wrap(err, "generate: persist parlay")
	}

	zap.L().Info("parlay created",
		zap.String("parlay_id", parlay.ID),
		zap.String("total_odds", total),
		zap.Int("confidence", confidence),
		zap.Int("risk", req.RiskLevel),
		zap.Int("legs", len(legs)))

	return &model.GenerationResult{
		Legs:       legs,
		TotalOdds:  total,
		Confidence: confidence,
		ParlayID:   parlay.ID,
	}, nil
}

func parlayType(req model.GenerationRequest) model.ParlayType {
	if req.Type != "" {
		return req.Type
	}
	return model.ParlayTypeCustom
}

// marketKeysFor expands the requested bet types into provider market keys.
func marketKeysFor(types []model.BetType) []string {
	var keys []string
	for _, bt := range types {
		if bt == model.BetTypePlayerProps {
			keys = append(keys, strings.Split(propMarkets, ",")...)
			continue
		}
		if k := bt.MarketKey(); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func sportLabel(sports []string) string {
	labels := make([]string, len(sports))
	for i, s := range sports {
		labels[i] = strings.ToUpper(lastSegment(s))
	}
	return strings.Join(labels, "/")
}

// lastSegment turns a provider sport key like "basketball_nba" into "nba".
func lastSegment(key string) string {
	if idx := strings.LastIndex(key, "_"); idx >= 0 && idx+1 < len(key) {
		return key[idx+1:]
	}
	return key
}
