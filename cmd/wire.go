package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sharppicks/parlay-engine/internal/generate"
	"github.com/sharppicks/parlay-engine/internal/resilience"
	"github.com/sharppicks/parlay-engine/internal/resolve"
	"github.com/sharppicks/parlay-engine/internal/store"
	"github.com/sharppicks/parlay-engine/pkg/anthropic"
	"github.com/sharppicks/parlay-engine/pkg/oddsapi"
)

// engineEnv bundles the wired collaborators the subcommands share.
type engineEnv struct {
	DB        store.Store
	Odds      oddsapi.Client
	Generator *generate.Generator
	Resolver  *resolve.Resolver
}

func (e *engineEnv) Close() {
	if e.DB != nil {
		_ = e.DB.Close()
	}
}

// openStore picks the backend from config. Postgres is the production
// driver; sqlite covers local runs without a server.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initEngine(ctx context.Context) (*engineEnv, error) {
	db, err := openStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	oddsOpts := []oddsapi.Option{
		oddsapi.WithRetry(resilience.FromRetryConfig(
			cfg.OddsAPI.RetryAttempts, cfg.OddsAPI.RetryBackoffMs, cfg.OddsAPI.RetryMaxDelayMs, 2.0, 0.25)),
	}
	if cfg.OddsAPI.BaseURL != "" {
		oddsOpts = append(oddsOpts, oddsapi.WithBaseURL(cfg.OddsAPI.BaseURL))
	}
	odds := oddsapi.NewClient(cfg.OddsAPI.Key, oddsOpts...)
	ai := anthropic.NewClient(cfg.Anthropic.Key)

	gen := cfg.Generator
	if gen.Region == "" {
		gen.Region = cfg.OddsAPI.Region
	}

	return &engineEnv{
		DB:        db,
		Odds:      odds,
		Generator: generate.New(odds, ai, db, gen, cfg.Anthropic),
		Resolver:  resolve.New(db, odds, cfg.Resolver),
	}, nil
}
