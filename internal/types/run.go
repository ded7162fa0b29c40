package types

import (
	"fmt"
	"sync"
	"time"
)

// RunState is the lifecycle state of a forecast run.
type RunState string

const (
	RunIdle           RunState = "idle"
	RunQueryBuilding  RunState = "query_building"
	RunQueryExecuting RunState = "query_executing"
	RunAggregating    RunState = "aggregating"
	RunAveraging      RunState = "averaging"
	RunInboundMerging RunState = "inbound_merging"
	RunReady          RunState = "ready"
	RunFailed         RunState = "failed"
)

// runTransitions enumerates the legal forward edges. RunFailed is reachable
// from every non-terminal state.
var runTransitions = map[RunState][]RunState{
	RunIdle:           {RunQueryBuilding},
	RunQueryBuilding:  {RunQueryExecuting},
	RunQueryExecuting: {RunAggregating},
	RunAggregating:    {RunAveraging},
	RunAveraging:      {RunInboundMerging, RunReady},
	RunInboundMerging: {RunReady},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s RunState) CanTransitionTo(next RunState) bool {
	if next == RunFailed {
		return s != RunReady && s != RunFailed
	}
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the run can make no further progress.
func (s RunState) Terminal() bool {
	return s == RunReady || s == RunFailed
}

// ForecastOptions are the caller-supplied knobs for a run.
type ForecastOptions struct {
	WeekStart       string `json:"weekStart" validate:"required,datetime=2006-01-02"`
	HistoricalWeeks int    `json:"historicalWeeks" validate:"required,min=1,max=8"`
	IgnoreZeroes    bool   `json:"ignoreZeroes"`
	GenerateInbound bool   `json:"generateInbound"`
	RetainInbound   bool   `json:"retainInbound"`
	Description     string `json:"description"`
}

// ForecastRun is the per-run context object. It owns the planning groups
// being forecast and the pipeline's progress through them. A run is built by
// exactly one goroutine; concurrent readers must use Status until the run is
// terminal, after which the full struct is quiescent.
type ForecastRun struct {
	mu sync.RWMutex

	ID            string               `json:"id"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	BusinessUnit  BusinessUnitSettings `json:"businessUnit"`
	Options       ForecastOptions      `json:"options"`
	State         RunState             `json:"state"`
	FailureReason string               `json:"failureReason,omitempty"`

	// Generated holds the pristine pipeline output; Modified holds the
	// working copies curve modifications apply to. Reset restores from
	// Generated.
	Generated []*PlanningGroupForecast `json:"generated,omitempty"`
	Modified  []*PlanningGroupForecast `json:"modified,omitempty"`

	// InboundForecastID is set when an inbound forecast was generated as
	// part of the run and retained on the platform.
	InboundForecastID string `json:"inboundForecastId,omitempty"`
}

// Transition advances the run state, rejecting illegal edges.
func (r *ForecastRun) Transition(next RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.State.CanTransitionTo(next) {
		return NewAppError(ErrCodeRunInvalidTransition,
			fmt.Sprintf("cannot transition run from %s to %s", r.State, next), nil)
	}
	r.State = next
	return nil
}

// Fail moves the run to the failed state with a reason. Safe to call from
// any non-terminal state.
func (r *ForecastRun) Fail(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State.Terminal() {
		return
	}
	r.State = RunFailed
	r.FailureReason = reason
}

// Status returns the current state and failure reason. Safe to call while
// the generation goroutine is still advancing the run.
func (r *ForecastRun) Status() (RunState, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State, r.FailureReason
}

// Lock serializes writers against the run's forecast data. Curve
// modifications take it so concurrent requests never interleave on the
// same matrices.
func (r *ForecastRun) Lock() { r.mu.Lock() }

// Unlock releases the write lock.
func (r *ForecastRun) Unlock() { r.mu.Unlock() }

// RLock takes a shared read lock over the run's forecast data.
func (r *ForecastRun) RLock() { r.mu.RLock() }

// RUnlock releases the shared read lock.
func (r *ForecastRun) RUnlock() { r.mu.RUnlock() }

// GeneratedGroup finds a group in the pristine output by planning group id.
func (r *ForecastRun) GeneratedGroup(planningGroupID string) *PlanningGroupForecast {
	return findGroup(r.Generated, planningGroupID)
}

// ModifiedGroup finds a group in the working copies by planning group id.
func (r *ForecastRun) ModifiedGroup(planningGroupID string) *PlanningGroupForecast {
	return findGroup(r.Modified, planningGroupID)
}

func findGroup(groups []*PlanningGroupForecast, planningGroupID string) *PlanningGroupForecast {
	for _, group := range groups {
		if group.PlanningGroup.ID == planningGroupID {
			return group
		}
	}
	return nil
}

// SnapshotModified deep-copies Generated into Modified. Called once when the
// pipeline completes so modifications never touch the pristine output.
func (r *ForecastRun) SnapshotModified() {
	r.Modified = make([]*PlanningGroupForecast, len(r.Generated))
	for i, group := range r.Generated {
		r.Modified[i] = group.Clone()
	}
}
