package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on top of SQLite
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			nickname TEXT NOT NULL,
			size INTEGER NOT NULL,
			mines INTEGER NOT NULL,
			score INTEGER NOT NULL,
			won INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_finished ON results(finished_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r *Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	query := `INSERT INTO results (
		id, session_id, nickname, size, mines, score, won, duration_ms, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.Nickname, r.Size, r.Mines, r.Score,
		r.Won, r.DurationMs, r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

const resultColumns = `id, session_id, nickname, size, mines, score, won, duration_ms, finished_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (Result, error) {
	var (
		r        Result
		finished int64
	)
	err := row.Scan(&r.ID, &r.SessionID, &r.Nickname, &r.Size, &r.Mines,
		&r.Score, &r.Won, &r.DurationMs, &finished)
	if err != nil {
		return Result{}, err
	}
	r.FinishedAt = time.UnixMilli(finished)
	return r, nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = ?`, id)

	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get result %s: %w", id, err)
	}
	return &r, nil
}

func (s *SQLiteStore) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM results ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(won), 0),
		COALESCE(MAX(score), 0),
		COALESCE(MIN(CASE WHEN won = 1 THEN duration_ms END), 0)
		FROM results`

	var st Stats
	err := s.db.QueryRowContext(ctx, query).Scan(&st.Played, &st.Won, &st.BestScore, &st.FastestWinMs)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	st.Lost = st.Played - st.Won

	return st, nil
}
