package core

import (
	"fmt"
	"sort"
	"sync"

	"forecastgen/internal/types"
)

// RunStore holds forecast runs in memory. Runs are written by the
// generation goroutine and read by request handlers; the store is the
// synchronization point between them.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*types.ForecastRun
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*types.ForecastRun)}
}

// Put stores or replaces a run.
func (s *RunStore) Put(run *types.ForecastRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

// Get returns the run or a run_not_found error.
func (s *RunStore) Get(runID string) (*types.ForecastRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeRunNotFound,
			fmt.Sprintf("run %s not found", runID), nil)
	}
	return run, nil
}

// List returns all runs ordered by creation time, newest first.
func (s *RunStore) List() []*types.ForecastRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.ForecastRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
