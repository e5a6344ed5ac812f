package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sharppicks/parlay-engine/internal/db"
	"github.com/sharppicks/parlay-engine/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_parlay":           `SELECT id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at FROM parlays WHERE id = $1`,
	"update_leg_result":    `UPDATE parlay_legs SET result = $1 WHERE id = $2`,
	"update_parlay_result": `UPDATE parlays SET result = $1 WHERE id = $2`,
	"daily_exists":         `SELECT EXISTS(SELECT 1 FROM parlays WHERE is_daily AND daily_date = $1)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS parlays (
	id         TEXT PRIMARY KEY,
	user_id    TEXT,
	total_odds TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	risk_level INTEGER NOT NULL,
	bet_types  JSONB NOT NULL,
	sports     JSONB NOT NULL,
	type       TEXT NOT NULL DEFAULT 'custom',
	is_daily   BOOLEAN NOT NULL DEFAULT false,
	daily_date TEXT,
	result     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parlay_legs (
	id         TEXT PRIMARY KEY,
	parlay_id  TEXT NOT NULL REFERENCES parlays(id) ON DELETE CASCADE,
	game_id    TEXT NOT NULL,
	team       TEXT NOT NULL,
	opponent   TEXT NOT NULL,
	player     TEXT,
	bet_type   TEXT NOT NULL,
	line       TEXT,
	odds       TEXT NOT NULL,
	sportsbook TEXT,
	reasoning  TEXT,
	sport      TEXT NOT NULL,
	game_time  TIMESTAMPTZ,
	result     TEXT NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_parlays_user_id ON parlays(user_id);
CREATE INDEX IF NOT EXISTS idx_parlays_daily_date ON parlays(daily_date) WHERE is_daily;
CREATE INDEX IF NOT EXISTS idx_parlays_result ON parlays(result);
CREATE INDEX IF NOT EXISTS idx_legs_parlay_id ON parlay_legs(parlay_id);
CREATE INDEX IF NOT EXISTS idx_legs_pending ON parlay_legs(game_time) WHERE result = 'pending';
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateParlay(ctx context.Context, parlay *model.Parlay) error {
	if parlay.ID == "" {
		parlay.ID = uuid.New().String()
	}
	if parlay.CreatedAt.IsZero() {
		parlay.CreatedAt = time.Now().UTC()
	}
	if parlay.Result == "" {
		parlay.Result = model.ParlayPending
	}

	betTypesJSON, err := json.Marshal(parlay.BetTypes)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal bet types")
	}
	sportsJSON, err := json.Marshal(parlay.Sports)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sports")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO parlays (id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		parlay.ID, parlay.UserID, parlay.TotalOdds, parlay.Confidence, parlay.RiskLevel,
		betTypesJSON, sportsJSON, string(parlay.Type), parlay.IsDaily, nullString(parlay.DailyDate),
		string(parlay.Result), parlay.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert parlay")
	}

	for i := range parlay.Legs {
		leg := &parlay.Legs[i]
		if leg.ID == "" {
			leg.ID = uuid.New().String()
		}
		leg.ParlayID = parlay.ID
		if leg.Result == "" {
			leg.Result = model.LegPending
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO parlay_legs (id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			leg.ID, leg.ParlayID, leg.GameID, leg.Team, leg.Opponent, leg.Player,
			string(leg.BetType), leg.Line, leg.Odds, leg.Sportsbook, leg.Reasoning,
			leg.Sport, leg.GameTime, string(leg.Result),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert leg %d", i)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit parlay")
	}
	return nil
}

func (s *PostgresStore) GetParlay(ctx context.Context, parlayID string) (*model.Parlay, error) {
	var p model.Parlay
	var betTypesJSON, sportsJSON []byte
	var userID, dailyDate *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at FROM parlays WHERE id = $1`,
		parlayID,
	).Scan(&p.ID, &userID, &p.TotalOdds, &p.Confidence, &p.RiskLevel,
		&betTypesJSON, &sportsJSON, &p.Type, &p.IsDaily, &dailyDate, &p.Result, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: parlay not found: %s", parlayID)
		}
		return nil, eris.Wrapf(err, "postgres: get parlay %s", parlayID)
	}
	if userID != nil {
		p.UserID = *userID
	}
	if dailyDate != nil {
		p.DailyDate = *dailyDate
	}
	if err := json.Unmarshal(betTypesJSON, &p.BetTypes); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal bet types")
	}
	if err := json.Unmarshal(sportsJSON, &p.Sports); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal sports")
	}

	legs, err := s.parlayLegs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Legs = legs
	return &p, nil
}

func (s *PostgresStore) parlayLegs(ctx context.Context, parlayID string) ([]model.Leg, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result FROM parlay_legs WHERE parlay_id = $1 ORDER BY id`,
		parlayID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list legs for %s", parlayID)
	}
	defer rows.Close()
	return scanLegs(rows)
}

func scanLegs(rows pgx.Rows) ([]model.Leg, error) {
	var legs []model.Leg
	for rows.Next() {
		var l model.Leg
		var player, line, sportsbook, reasoning *string
		if err := rows.Scan(&l.ID, &l.ParlayID, &l.GameID, &l.Team, &l.Opponent,
			&player, &l.BetType, &line, &l.Odds, &sportsbook, &reasoning,
			&l.Sport, &l.GameTime, &l.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: scan leg")
		}
		l.Player = deref(player)
		l.Line = deref(line)
		l.Sportsbook = deref(sportsbook)
		l.Reasoning = deref(reasoning)
		legs = append(legs, l)
	}
	return legs, eris.Wrap(rows.Err(), "postgres: iterate legs")
}

func (s *PostgresStore) ListParlays(ctx context.Context, filter ParlayFilter) ([]model.Parlay, error) {
	query := `SELECT id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at FROM parlays WHERE true`
	args := []any{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(` AND user_id = $%d`, argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.DailyDate != "" {
		query += fmt.Sprintf(` AND is_daily AND daily_date = $%d`, argIdx)
		args = append(args, filter.DailyDate)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list parlays")
	}
	defer rows.Close()

	var parlays []model.Parlay
	for rows.Next() {
		var p model.Parlay
		var betTypesJSON, sportsJSON []byte
		var userID, dailyDate *string
		if err := rows.Scan(&p.ID, &userID, &p.TotalOdds, &p.Confidence, &p.RiskLevel,
			&betTypesJSON, &sportsJSON, &p.Type, &p.IsDaily, &dailyDate, &p.Result, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan parlay")
		}
		p.UserID = deref(userID)
		p.DailyDate = deref(dailyDate)
		if err := json.Unmarshal(betTypesJSON, &p.BetTypes); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal bet types")
		}
		if err := json.Unmarshal(sportsJSON, &p.Sports); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal sports")
		}
		parlays = append(parlays, p)
	}
	return parlays, eris.Wrap(rows.Err(), "postgres: iterate parlays")
}

func (s *PostgresStore) UpdateParlayResult(ctx context.Context, parlayID string, result model.ParlayResult) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE parlays SET result = $1 WHERE id = $2`,
		string(result), parlayID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update parlay result %s", parlayID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: parlay not found: %s", parlayID)
	}
	return nil
}

func (s *PostgresStore) ListPendingLegs(ctx context.Context, before time.Time) ([]model.Leg, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result
		 FROM parlay_legs WHERE result = 'pending' AND game_time IS NOT NULL AND game_time <= $1 ORDER BY game_time`,
		before,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pending legs")
	}
	defer rows.Close()
	return scanLegs(rows)
}

func (s *PostgresStore) UpdateLegResult(ctx context.Context, legID string, result model.LegResult) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE parlay_legs SET result = $1 WHERE id = $2`,
		string(result), legID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update leg result %s", legID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: leg not found: %s", legID)
	}
	return nil
}

func (s *PostgresStore) DailyExists(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM parlays WHERE is_daily AND daily_date = $1)`,
		date,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: daily exists %s", date)
	}
	return exists, nil
}

func (s *PostgresStore) DeleteDaily(ctx context.Context, date string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM parlays WHERE is_daily AND daily_date = $1`,
		date,
	)
	return eris.Wrapf(err, "postgres: delete daily %s", date)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
