package generate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/store"
)

// Archetype is one fixed daily risk configuration.
type Archetype struct {
	Type    model.ParlayType
	Risk    int
	NumLegs int
}

var dailyArchetypes = []Archetype{
	{Type: model.ParlayTypeSafe, Risk: 2, NumLegs: 3},
	{Type: model.ParlayTypeBalanced, Risk: 5, NumLegs: 3},
	{Type: model.ParlayTypeRisky, Risk: 8, NumLegs: 3},
}

var richBetTypes = []model.BetType{
	model.BetTypeMoneyline, model.BetTypeSpread, model.BetTypeTotals, model.BetTypePlayerProps,
}

var standardBetTypes = []model.BetType{
	model.BetTypeMoneyline, model.BetTypeSpread, model.BetTypeTotals,
}

// RunDaily generates the fixed archetype batch for one calendar date. The
// odds dataset is fetched once and shared; archetypes run concurrently and
// fail independently. A date that already has picks is reused unless force
// is set, which clears and rebuilds the cycle.
func (g *Generator) RunDaily(ctx context.Context, sports []string, date string, force bool) ([]model.DailyOutcome, error) {
	if date == "" {
		return nil, eris.New("generate: daily date is required")
	}

	exists, err := g.db.DailyExists(ctx, date)
	if err != nil {
		return nil, eris.Wrap(err, "generate: check daily cycle")
	}
	if exists {
		if !force {
			return g.reuseDaily(ctx, date)
		}
		if err := g.db.DeleteDaily(ctx, date); err != nil {
			return nil, eris.Wrap(err, "generate: clear daily cycle")
		}
		zap.L().Info("cleared existing daily cycle", zap.String("date", date))
	}

	base := model.GenerationRequest{
		Sports:    sports,
		IsDaily:   true,
		DailyDate: date,
		BetTypes:  richBetTypes,
	}

	// One upstream fetch for the whole batch: try the prop-rich market set
	// first, fall back to standard markets when the rich fetch is empty.
	raw, err := g.FetchGames(ctx, base)
	if err != nil || len(raw) == 0 {
		if err != nil {
			zap.L().Warn("rich odds fetch failed, falling back to standard markets", zap.Error(err))
		}
		base = base.WithBetTypes(standardBetTypes)
		raw, err = g.FetchGames(ctx, base)
		if err != nil {
			return nil, eris.Wrap(err, "generate: fetch daily odds")
		}
	}

	outcomes := make([]model.DailyOutcome, len(dailyArchetypes))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(len(dailyArchetypes))

	for i, arch := range dailyArchetypes {
		eg.Go(func() error {
			req := base
			req.RiskLevel = arch.Risk
			req.NumLegs = arch.NumLegs
			req.Type = arch.Type

			res, genErr := g.GenerateFrom(gctx, req, raw)
			if genErr != nil {
				zap.L().Warn("daily archetype failed",
					zap.String("type", string(arch.Type)),
					zap.Error(genErr))
				outcomes[i] = model.DailyOutcome{
					Type:  arch.Type,
					Error: eris.Cause(genErr).Error(),
				}
				return nil
			}
			outcomes[i] = model.DailyOutcome{
				Type:     arch.Type,
				Success:  true,
				ParlayID: res.ParlayID,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("daily cycle complete",
		zap.String("date", date),
		zap.Int("archetypes", len(outcomes)))
	return outcomes, nil
}

// reuseDaily reports the existing cycle's parlays as successful outcomes.
func (g *Generator) reuseDaily(ctx context.Context, date string) ([]model.DailyOutcome, error) {
	existing, err := g.db.ListParlays(ctx, store.ParlayFilter{DailyDate: date})
	if err != nil {
		return nil, eris.Wrap(err, "generate: load existing daily cycle")
	}
	outcomes := make([]model.DailyOutcome, 0, len(existing))
	for _, p := range existing {
		outcomes = append(outcomes, model.DailyOutcome{
			Type:     p.Type,
			Success:  true,
			ParlayID: p.ID,
		})
	}
	zap.L().Info("reusing existing daily cycle",
		zap.String("date", date), zap.Int("parlays", len(outcomes)))
	return outcomes, nil
}
