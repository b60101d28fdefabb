package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps results for the lifetime of the process. It backs local
// play when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	results []Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Close() error                      { return nil }
func (m *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (m *MemoryStore) SaveResult(ctx context.Context, r *Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = append(m.results, *r)
	return nil
}

func (m *MemoryStore) GetResult(ctx context.Context, id string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.results {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.RLock()
	results := make([]Result, len(m.results))
	copy(results, m.results)
	m.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinishedAt.After(results[j].FinishedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var st Stats
	for _, r := range m.results {
		st.Played++
		if r.Won {
			st.Won++
			if st.FastestWinMs == 0 || r.DurationMs < st.FastestWinMs {
				st.FastestWinMs = r.DurationMs
			}
		} else {
			st.Lost++
		}
		if r.Score > st.BestScore {
			st.BestScore = r.Score
		}
	}
	return st, nil
}
