// Package resolve settles pending parlay legs against final scores and
// cascades leg outcomes up to parlay results.
package resolve

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sharppicks/parlay-engine/internal/config"
	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/store"
	"github.com/sharppicks/parlay-engine/pkg/oddsapi"
)

const (
	defaultBufferHours = 3
	defaultDaysFrom    = 3
)

// Resolver runs one settlement pass. Safe to re-invoke repeatedly: resolved
// legs never reappear in the pending query.
type Resolver struct {
	db     store.Store
	scores oddsapi.Client
	cfg    config.ResolverConfig
	now    func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New wires a Resolver.
func New(db store.Store, scores oddsapi.Client, cfg config.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{db: db, scores: scores, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run settles every gradeable pending leg whose game started at least the
// buffer ago, then recomputes parlay results for every parlay touched.
func (r *Resolver) Run(ctx context.Context) (*model.ResolveSummary, error) {
	buffer := r.cfg.BufferHours
	if buffer <= 0 {
		buffer = defaultBufferHours
	}
	cutoff := r.now().UTC().Add(-time.Duration(buffer) * time.Hour)

	legs, err := r.db.ListPendingLegs(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: list pending legs")
	}

	summary := &model.ResolveSummary{Checked: len(legs)}
	if len(legs) == 0 {
		return summary, nil
	}

	touched := make(map[string]bool)
	for sport, sportLegs := range groupBySport(legs) {
		if err := r.resolveSport(ctx, sport, sportLegs, summary, touched); err != nil {
			// A missing score feed skips this sport for the cycle; the
			// legs come back on the next pass.
			zap.L().Warn("skipping sport this cycle",
				zap.String("sport", sport), zap.Error(err))
		}
	}

	for parlayID := range touched {
		if err := r.cascade(ctx, parlayID); err != nil {
			zap.L().Error("parlay cascade failed",
				zap.String("parlay_id", parlayID), zap.Error(err))
		}
	}

	zap.L().Info("resolution pass complete",
		zap.Int("checked", summary.Checked),
		zap.Int("resolved", summary.Resolved),
		zap.Int("won", summary.Won),
		zap.Int("lost", summary.Lost))
	return summary, nil
}

func (r *Resolver) resolveSport(ctx context.Context, sport string, legs []model.Leg, summary *model.ResolveSummary, touched map[string]bool) error {
	daysFrom := r.cfg.DaysFrom
	if daysFrom <= 0 {
		daysFrom = defaultDaysFrom
	}

	games, err := r.scores.FetchScores(ctx, sport, daysFrom)
	if err != nil {
		return eris.Wrapf(err, "resolve: fetch scores for %s", sport)
	}

	for _, leg := range legs {
		game := matchGame(leg, games)
		if game == nil {
			continue
		}
		result, ok := gradeLeg(leg, game)
		if !ok {
			continue
		}

		if err := r.db.UpdateLegResult(ctx, leg.ID, result); err != nil {
			zap.L().Error("leg update failed",
				zap.String("leg_id", leg.ID), zap.Error(err))
			continue
		}
		touched[leg.ParlayID] = true
		summary.Resolved++
		switch result {
		case model.LegWon:
			summary.Won++
		case model.LegLost:
			summary.Lost++
		}
		zap.L().Debug("leg settled",
			zap.String("leg_id", leg.ID),
			zap.String("team", leg.Team),
			zap.String("result", string(result)))
	}
	return nil
}

// cascade recomputes one parlay's result from its legs: lost if any leg
// lost, won once every leg is settled without a loss, pending otherwise.
func (r *Resolver) cascade(ctx context.Context, parlayID string) error {
	parlay, err := r.db.GetParlay(ctx, parlayID)
	if err != nil {
		return eris.Wrapf(err, "resolve: load parlay %s", parlayID)
	}

	result := deriveParlayResult(parlay.Legs)
	if result == model.ParlayPending || result == parlay.Result {
		return nil
	}
	return r.db.UpdateParlayResult(ctx, parlayID, result)
}

func deriveParlayResult(legs []model.Leg) model.ParlayResult {
	settled := true
	for _, l := range legs {
		switch l.Result {
		case model.LegLost:
			return model.ParlayLost
		case model.LegPending:
			settled = false
		}
	}
	if settled {
		return model.ParlayWon
	}
	return model.ParlayPending
}

func groupBySport(legs []model.Leg) map[string][]model.Leg {
	groups := make(map[string][]model.Leg)
	for _, l := range legs {
		groups[l.Sport] = append(groups[l.Sport], l)
	}
	return groups
}
