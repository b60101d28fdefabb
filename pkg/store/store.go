// Package store keeps the history of finished games.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: result not found")

// Store represents the result history
type Store interface {
	Close() error
	Migrate(ctx context.Context) error
	SaveResult(ctx context.Context, r *Result) error
	GetResult(ctx context.Context, id string) (*Result, error)
	RecentResults(ctx context.Context, limit int) ([]Result, error)
	Stats(ctx context.Context) (Stats, error)
}

// Result is one finished game
type Result struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Nickname   string    `json:"nickname"`
	Size       int       `json:"size"`
	Mines      int       `json:"mines"`
	Score      int       `json:"score"`
	Won        bool      `json:"won"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

type Stats struct {
	Played       int   `json:"played"`
	Won          int   `json:"won"`
	Lost         int   `json:"lost"`
	BestScore    int   `json:"best_score"`
	FastestWinMs int64 `json:"fastest_win_ms"`
}

const DefaultLimit = 20
