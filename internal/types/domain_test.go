package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_Totals(t *testing.T) {
	m := &Matrix{}
	m[1][36] = 4
	m[1][37] = 6
	m[3][0] = 2.5

	assert.Equal(t, 10.0, m.DayTotal(1))
	assert.Equal(t, 0.0, m.DayTotal(0))
	assert.Equal(t, 12.5, m.Total())

	daily := m.DailyTotals()
	require.Len(t, daily, DaysPerWeek)
	assert.Equal(t, 10.0, daily[1])
	assert.Equal(t, 2.5, daily[3])
}

func TestMatrix_Clone_Independent(t *testing.T) {
	m := &Matrix{}
	m[2][10] = 7

	clone := m.Clone()
	clone[2][10] = 99

	assert.Equal(t, 7.0, m[2][10])
	assert.Equal(t, 99.0, clone[2][10])
}

func TestMatrix_SetDay(t *testing.T) {
	m := &Matrix{}
	day := make([]float64, IntervalsPerDay)
	day[5] = 3
	m.SetDay(4, day)
	assert.Equal(t, 3.0, m[4][5])

	assert.Panics(t, func() { m.SetDay(0, []float64{1, 2, 3}) })
}

func TestPlanningGroupForecast_Week_CreatesPerKey(t *testing.T) {
	g := &PlanningGroupForecast{}

	w1 := g.Week("2023-01")
	w1.IntradayValues[MetricAttempted][0][0] = 5

	// Same key returns the same accumulator.
	again := g.Week("2023-01")
	assert.Same(t, w1, again)

	// A different key gets a fresh, zeroed accumulator.
	w2 := g.Week("2023-02")
	assert.NotSame(t, w1, w2)
	assert.Equal(t, 0.0, w2.IntradayValues[MetricAttempted][0][0])
	assert.Len(t, g.HistoricalWeeks, 2)
}

func TestPlanningGroupForecast_Clone_DeepCopies(t *testing.T) {
	g := &PlanningGroupForecast{
		PlanningGroup: EntityRef{ID: "pg-1"},
		Campaign:      &EntityRef{ID: "c-1"},
		ForecastData:  NewMetricSet(MetricContacts),
	}
	g.Week("2023-01").IntradayValues[MetricHandleTime][1][2] = 8

	clone := g.Clone()
	clone.Campaign.ID = "c-2"
	clone.HistoricalWeeks[0].IntradayValues[MetricHandleTime][1][2] = 100
	clone.ForecastData[MetricContacts][0][0] = 42

	assert.Equal(t, "c-1", g.Campaign.ID)
	assert.Equal(t, 8.0, g.HistoricalWeeks[0].IntradayValues[MetricHandleTime][1][2])
	assert.Equal(t, 0.0, g.ForecastData[MetricContacts][0][0])
}

func TestRunState_Transitions(t *testing.T) {
	cases := []struct {
		from, to RunState
		ok       bool
	}{
		{RunIdle, RunQueryBuilding, true},
		{RunQueryBuilding, RunQueryExecuting, true},
		{RunQueryExecuting, RunAggregating, true},
		{RunAggregating, RunAveraging, true},
		{RunAveraging, RunInboundMerging, true},
		{RunAveraging, RunReady, true},
		{RunInboundMerging, RunReady, true},
		{RunIdle, RunReady, false},
		{RunReady, RunQueryBuilding, false},
		{RunQueryExecuting, RunFailed, true},
		{RunReady, RunFailed, false},
		{RunFailed, RunFailed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestForecastRun_Fail_TerminalStatesUntouched(t *testing.T) {
	run := &ForecastRun{State: RunReady}
	run.Fail("late failure")
	assert.Equal(t, RunReady, run.State)
	assert.Empty(t, run.FailureReason)

	run = &ForecastRun{State: RunAggregating}
	run.Fail("no data")
	assert.Equal(t, RunFailed, run.State)
	assert.Equal(t, "no data", run.FailureReason)
}

func TestForecastRun_SnapshotModified(t *testing.T) {
	run := &ForecastRun{
		Generated: []*PlanningGroupForecast{{
			PlanningGroup: EntityRef{ID: "pg-1"},
			ForecastData:  NewMetricSet(MetricContacts),
		}},
	}
	run.Generated[0].ForecastData[MetricContacts][0][0] = 10

	run.SnapshotModified()
	run.Modified[0].ForecastData[MetricContacts][0][0] = 55

	assert.Equal(t, 10.0, run.Generated[0].ForecastData[MetricContacts][0][0])
	require.NotNil(t, run.ModifiedGroup("pg-1"))
	assert.Nil(t, run.ModifiedGroup("missing"))
}
