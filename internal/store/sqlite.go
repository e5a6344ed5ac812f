package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sharppicks/parlay-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS parlays (
	id         TEXT PRIMARY KEY,
	user_id    TEXT,
	total_odds TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	risk_level INTEGER NOT NULL,
	bet_types  TEXT NOT NULL,
	sports     TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'custom',
	is_daily   INTEGER NOT NULL DEFAULT 0,
	daily_date TEXT,
	result     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
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
	game_time  DATETIME,
	result     TEXT NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_parlays_user_id ON parlays(user_id);
CREATE INDEX IF NOT EXISTS idx_parlays_daily_date ON parlays(daily_date);
CREATE INDEX IF NOT EXISTS idx_legs_parlay_id ON parlay_legs(parlay_id);
CREATE INDEX IF NOT EXISTS idx_legs_result ON parlay_legs(result);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateParlay(ctx context.Context, parlay *model.Parlay) error {
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
		return eris.Wrap(err, "sqlite: marshal bet types")
	}
	sportsJSON, err := json.Marshal(parlay.Sports)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sports")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO parlays (id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		parlay.ID, parlay.UserID, parlay.TotalOdds, parlay.Confidence, parlay.RiskLevel,
		string(betTypesJSON), string(sportsJSON), string(parlay.Type), parlay.IsDaily,
		parlay.DailyDate, string(parlay.Result), parlay.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert parlay")
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
		_, err = tx.ExecContext(ctx,
			`INSERT INTO parlay_legs (id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			leg.ID, leg.ParlayID, leg.GameID, leg.Team, leg.Opponent, leg.Player,
			string(leg.BetType), leg.Line, leg.Odds, leg.Sportsbook, leg.Reasoning,
			leg.Sport, leg.GameTime, string(leg.Result),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert leg %d", i)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit parlay")
}

func (s *SQLiteStore) GetParlay(ctx context.Context, parlayID string) (*model.Parlay, error) {
	var p model.Parlay
	var betTypesJSON, sportsJSON string
	var userID, dailyDate sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at FROM parlays WHERE id = ?`,
		parlayID,
	).Scan(&p.ID, &userID, &p.TotalOdds, &p.Confidence, &p.RiskLevel,
		&betTypesJSON, &sportsJSON, &p.Type, &p.IsDaily, &dailyDate, &p.Result, &p.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get parlay %s", parlayID)
	}
	p.UserID = userID.String
	p.DailyDate = dailyDate.String
	if err := json.Unmarshal([]byte(betTypesJSON), &p.BetTypes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal bet types")
	}
	if err := json.Unmarshal([]byte(sportsJSON), &p.Sports); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal sports")
	}

	legs, err := s.queryLegs(ctx,
		`SELECT id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result FROM parlay_legs WHERE parlay_id = ? ORDER BY id`,
		p.ID)
	if err != nil {
		return nil, err
	}
	p.Legs = legs
	return &p, nil
}

func (s *SQLiteStore) ListParlays(ctx context.Context, filter ParlayFilter) ([]model.Parlay, error) {
	query := `SELECT id, user_id, total_odds, confidence, risk_level, bet_types, sports, type, is_daily, daily_date, result, created_at FROM parlays WHERE 1=1`
	args := []any{}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.DailyDate != "" {
		query += ` AND is_daily = 1 AND daily_date = ?`
		args = append(args, filter.DailyDate)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list parlays")
	}
	defer rows.Close()

	var parlays []model.Parlay
	for rows.Next() {
		var p model.Parlay
		var betTypesJSON, sportsJSON string
		var userID, dailyDate sql.NullString
		if err := rows.Scan(&p.ID, &userID, &p.TotalOdds, &p.Confidence, &p.RiskLevel,
			&betTypesJSON, &sportsJSON, &p.Type, &p.IsDaily, &dailyDate, &p.Result, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan parlay")
		}
		p.UserID = userID.String
		p.DailyDate = dailyDate.String
		if err := json.Unmarshal([]byte(betTypesJSON), &p.BetTypes); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal bet types")
		}
		if err := json.Unmarshal([]byte(sportsJSON), &p.Sports); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal sports")
		}
		parlays = append(parlays, p)
	}
	return parlays, eris.Wrap(rows.Err(), "sqlite: iterate parlays")
}

func (s *SQLiteStore) UpdateParlayResult(ctx context.Context, parlayID string, result model.ParlayResult) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parlays SET result = ? WHERE id = ?`,
		string(result), parlayID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update parlay result %s", parlayID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: parlay not found: %s", parlayID)
	}
	return nil
}

func (s *SQLiteStore) ListPendingLegs(ctx context.Context, before time.Time) ([]model.Leg, error) {
	return s.queryLegs(ctx,
		`SELECT id, parlay_id, game_id, team, opponent, player, bet_type, line, odds, sportsbook, reasoning, sport, game_time, result
		 FROM parlay_legs WHERE result = 'pending' AND game_time IS NOT NULL AND game_time <= ? ORDER BY game_time`,
		before)
}

func (s *SQLiteStore) queryLegs(ctx context.Context, query string, args ...any) ([]model.Leg, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query legs")
	}
	defer rows.Close()

	var legs []model.Leg
	for rows.Next() {
		var l model.Leg
		var player, line, sportsbook, reasoning sql.NullString
		var gameTime sql.NullTime
		if err := rows.Scan(&l.ID, &l.ParlayID, &l.GameID, &l.Team, &l.Opponent,
			&player, &l.BetType, &line, &l.Odds, &sportsbook, &reasoning,
			&l.Sport, &gameTime, &l.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan leg")
		}
		l.Player = player.String
		l.Line = line.String
		l.Sportsbook = sportsbook.String
		l.Reasoning = reasoning.String
		if gameTime.Valid {
			t := gameTime.Time
			l.GameTime = &t
		}
		legs = append(legs, l)
	}
	return legs, eris.Wrap(rows.Err(), "sqlite: iterate legs")
}

func (s *SQLiteStore) UpdateLegResult(ctx context.Context, legID string, result model.LegResult) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parlay_legs SET result = ? WHERE id = ?`,
		string(result), legID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update leg result %s", legID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: leg not found: %s", legID)
	}
	return nil
}

func (s *SQLiteStore) DailyExists(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parlays WHERE is_daily = 1 AND daily_date = ?)`,
		date,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: daily exists %s", date)
	}
	return exists, nil
}

func (s *SQLiteStore) DeleteDaily(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM parlays WHERE is_daily = 1 AND daily_date = ?`,
		date,
	)
	return eris.Wrapf(err, "sqlite: delete daily %s", date)
}
