// Package store persists parlays and their legs behind a driver-agnostic
// interface, with Postgres for production and SQLite for local use.
package store

import (
	"context"
	"time"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// ParlayFilter specifies criteria for listing parlays.
type ParlayFilter struct {
	UserID    string `json:"user_id,omitempty"`
	DailyDate string `json:"daily_date,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the parlay pipeline.
type Store interface {
	// Parlays. CreateParlay assigns ids and writes the parlay and all of
	// its legs in one transaction.
	CreateParlay(ctx context.Context, parlay *model.Parlay) error
	GetParlay(ctx context.Context, parlayID string) (*model.Parlay, error)
	ListParlays(ctx context.Context, filter ParlayFilter) ([]model.Parlay, error)
	UpdateParlayResult(ctx context.Context, parlayID string, result model.ParlayResult) error

	// Legs. ListPendingLegs returns pending legs whose game started before
	// the cutoff; resolved legs never reappear, which keeps the resolver
	// idempotent.
	ListPendingLegs(ctx context.Context, before time.Time) ([]model.Leg, error)
	UpdateLegResult(ctx context.Context, legID string, result model.LegResult) error

	// Daily cycle bucket (date is "YYYY-MM-DD").
	DailyExists(ctx context.Context, date string) (bool, error)
	DeleteDaily(ctx context.Context, date string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
