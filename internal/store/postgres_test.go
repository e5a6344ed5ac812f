package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func samplePostgresParlay() *model.Parlay {
	gt := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	return &model.Parlay{
		TotalOdds:  "+264",
		Confidence: 82,
		RiskLevel:  2,
		BetTypes:   []model.BetType{model.BetTypeMoneyline},
		Sports:     []string{"basketball_nba"},
		Type:       model.ParlayTypeCustom,
		Legs: []model.Leg{
			{
				GameID:   "g1",
				Team:     "Boston Celtics",
				Opponent: "Miami Heat",
				BetType:  model.BetTypeMoneyline,
				Odds:     "-200",
				Sport:    "basketball_nba",
				GameTime: &gt,
			},
			{
				GameID:   "g2",
				Team:     "Denver Nuggets",
				Opponent: "Utah Jazz",
				BetType:  model.BetTypeMoneyline,
				Odds:     "-150",
				Sport:    "basketball_nba",
				GameTime: &gt,
			},
		},
	}
}

func TestPostgresStore_CreateParlay_Transactional(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	parlay := samplePostgresParlay()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO parlays`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "+264", 82, 2,
			pgxmock.AnyArg(), pgxmock.AnyArg(), "custom", false, pgxmock.AnyArg(),
			"pending", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for range parlay.Legs {
		mock.ExpectExec(`INSERT INTO parlay_legs`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err := s.CreateParlay(context.Background(), parlay)
	require.NoError(t, err)
	assert.NotEmpty(t, parlay.ID)
	assert.Equal(t, parlay.ID, parlay.Legs[0].ParlayID)
	assert.Equal(t, model.LegPending, parlay.Legs[0].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateParlay_RollsBackOnLegFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	parlay := samplePostgresParlay()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO parlays`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO parlay_legs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrTxClosed)
	mock.ExpectRollback()

	err := s.CreateParlay(context.Background(), parlay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert leg")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetParlay_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, user_id, total_odds`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetParlay(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLegResult_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE parlay_legs SET result`).
		WithArgs("won", "leg-404").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateLegResult(context.Background(), "leg-404", model.LegWon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leg not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPendingLegs(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	cutoff := time.Now().UTC()
	gt := cutoff.Add(-4 * time.Hour)

	cols := []string{"id", "parlay_id", "game_id", "team", "opponent", "player",
		"bet_type", "line", "odds", "sportsbook", "reasoning", "sport", "game_time", "result"}
	mock.ExpectQuery(`SELECT .+ FROM parlay_legs WHERE result = 'pending'`).
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			"leg-1", "parlay-1", "g1", "Boston Celtics", "Miami Heat", nil,
			model.BetTypeMoneyline, nil, "-200", nil, nil, "basketball_nba", &gt, model.LegPending,
		))

	legs, err := s.ListPendingLegs(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, "leg-1", legs[0].ID)
	assert.Equal(t, model.LegPending, legs[0].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DailyExists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("2026-03-14").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.DailyExists(context.Background(), "2026-03-14")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
