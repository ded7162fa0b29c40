// Package forecasts orchestrates outbound forecast generation: historical
// query construction and execution, aggregation, averaging, optional
// inbound merge, and forecast export.
package forecasts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"forecastgen/internal/aggregate"
	"forecastgen/internal/averaging"
	"forecastgen/internal/external"
	"forecastgen/internal/intervals"
	"forecastgen/internal/metrics"
	"forecastgen/internal/types"
)

// averagingConcurrency bounds the per-group transform fan-out.
const averagingConcurrency = 4

// Pipeline carries a run and its intermediate artifacts between stages.
type Pipeline struct {
	Run     *types.ForecastRun
	Queries []types.AggregateQuery
	Results []types.QueryResultGroup
}

// Stage is one step of forecast generation. EntryState is the run state
// the pipeline transitions to before Execute runs.
type Stage interface {
	Name() string
	EntryState() types.RunState
	Execute(ctx context.Context, p *Pipeline) error
}

// Service drives forecast runs end to end.
type Service struct {
	analytics     external.AnalyticsService
	wfm           external.WFMService
	notifications external.NotificationService
	aggregator    *aggregate.Aggregator
	metrics       *metrics.Metrics
	logger        *slog.Logger
	clock         types.Clock
}

// NewService wires the forecast service. All dependencies are required.
func NewService(
	analytics external.AnalyticsService,
	wfm external.WFMService,
	notifications external.NotificationService,
	m *metrics.Metrics,
	logger *slog.Logger,
	clock types.Clock,
) (*Service, error) {
	if analytics == nil {
		return nil, fmt.Errorf("forecasts: analytics service is required")
	}
	if wfm == nil {
		return nil, fmt.Errorf("forecasts: wfm service is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("forecasts: notification service is required")
	}
	if m == nil {
		return nil, fmt.Errorf("forecasts: metrics are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("forecasts: logger is required")
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Service{
		analytics:     analytics,
		wfm:           wfm,
		notifications: notifications,
		aggregator:    aggregate.New(logger),
		metrics:       m,
		logger:        logger,
		clock:         clock,
	}, nil
}

// Generate runs the full pipeline against the run in place. On failure the
// run transitions to failed with the reason recorded; on success it is
// ready, with the modifiable copy snapshotted from the generated output.
func (s *Service) Generate(ctx context.Context, run *types.ForecastRun) error {
	s.metrics.RunsStarted.Inc()
	p := &Pipeline{Run: run}

	for _, stage := range s.stages(run) {
		if err := run.Transition(stage.EntryState()); err != nil {
			return err
		}
		run.UpdatedAt = s.clock.Now()
		s.logger.InfoContext(ctx, "forecast stage starting",
			"run_id", run.ID,
			"stage", stage.Name(),
		)

		start := s.clock.Now()
		err := stage.Execute(ctx, p)
		s.metrics.StageDuration.WithLabelValues(stage.Name()).Observe(s.clock.Now().Sub(start).Seconds())
		if err != nil {
			appErr := types.AsAppError(err)
			run.Fail(appErr.Message)
			run.UpdatedAt = s.clock.Now()
			s.metrics.RunsCompleted.WithLabelValues("failed").Inc()
			s.logger.ErrorContext(ctx, "forecast stage failed",
				"run_id", run.ID,
				"stage", stage.Name(),
				"error", err,
			)
			return appErr
		}
	}

	run.SnapshotModified()
	if err := run.Transition(types.RunReady); err != nil {
		return err
	}
	run.UpdatedAt = s.clock.Now()
	s.metrics.RunsCompleted.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "forecast run ready", "run_id", run.ID)
	return nil
}

func (s *Service) stages(run *types.ForecastRun) []Stage {
	stages := []Stage{
		&queryBuildStage{svc: s},
		&queryExecuteStage{svc: s},
		&aggregationStage{svc: s},
		&averagingStage{svc: s},
	}
	if run.Options.GenerateInbound {
		stages = append(stages, &inboundStage{svc: s})
	}
	return stages
}

type queryBuildStage struct{ svc *Service }

func (st *queryBuildStage) Name() string               { return "query_build" }
func (st *queryBuildStage) EntryState() types.RunState { return types.RunQueryBuilding }

func (st *queryBuildStage) Execute(ctx context.Context, p *Pipeline) error {
	run := p.Run
	ClassifyGroups(run.Generated)
	for _, group := range run.Generated {
		if !group.Metadata.ForecastStatus.IsForecast {
			st.svc.metrics.GroupsSkipped.WithLabelValues(group.Metadata.ForecastStatus.Reason).Inc()
		}
	}

	loc, err := time.LoadLocation(run.BusinessUnit.TimeZone)
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationFailed,
			fmt.Sprintf("unknown business unit time zone %q", run.BusinessUnit.TimeZone), err)
	}
	startDay, err := intervals.ParseWeekday(run.BusinessUnit.StartDayOfWeek)
	if err != nil {
		return err
	}

	weeks := intervals.QueryIntervals(st.svc.clock.Now(), run.Options.HistoricalWeeks, startDay, loc)
	p.Queries = BuildQueries(run, weeks)
	st.svc.logger.InfoContext(ctx, "historical queries built",
		"run_id", run.ID,
		"weeks", len(weeks),
		"queries", len(p.Queries),
	)
	return nil
}

type queryExecuteStage struct{ svc *Service }

func (st *queryExecuteStage) Name() string               { return "query_execute" }
func (st *queryExecuteStage) EntryState() types.RunState { return types.RunQueryExecuting }

// Execute runs the weekly queries serially: the aggregates endpoint
// rate-limits aggressively and one query per historical week keeps the
// pressure predictable.
func (st *queryExecuteStage) Execute(ctx context.Context, p *Pipeline) error {
	for _, query := range p.Queries {
		resp, err := st.svc.analytics.ExecuteAggregateQuery(ctx, query)
		if err != nil {
			st.svc.metrics.UpstreamCalls.WithLabelValues("analytics", "error").Inc()
			return err
		}
		st.svc.metrics.UpstreamCalls.WithLabelValues("analytics", "ok").Inc()
		p.Results = append(p.Results, resp.Results...)
	}
	st.svc.logger.InfoContext(ctx, "historical queries executed",
		"run_id", p.Run.ID,
		"result_rows", len(p.Results),
	)
	return nil
}

type aggregationStage struct{ svc *Service }

func (st *aggregationStage) Name() string               { return "aggregation" }
func (st *aggregationStage) EntryState() types.RunState { return types.RunAggregating }

func (st *aggregationStage) Execute(ctx context.Context, p *Pipeline) error {
	if len(p.Queries) > 0 && len(p.Results) == 0 {
		return types.NewAppError(types.ErrCodeRunNoHistoricalData,
			"no historical data returned for any campaign", nil)
	}

	st.svc.aggregator.ProcessResults(ctx, p.Results, p.Run.Generated)
	eligible := st.svc.aggregator.ValidateHistory(ctx, p.Run.Generated)
	for _, group := range p.Run.Generated {
		if group.Metadata.ForecastStatus.Reason == types.ReasonNoHistoricalData {
			st.svc.metrics.GroupsSkipped.WithLabelValues(types.ReasonNoHistoricalData).Inc()
		}
	}
	if eligible == 0 && len(p.Queries) > 0 {
		return types.NewAppError(types.ErrCodeRunNoHistoricalData,
			"no planning group has historical data", nil)
	}
	return nil
}

type averagingStage struct{ svc *Service }

func (st *averagingStage) Name() string               { return "averaging" }
func (st *averagingStage) EntryState() types.RunState { return types.RunAveraging }

// Execute transforms each eligible group independently. A failing group is
// excluded from the forecast rather than failing the run; the stage fails
// only when every group fails.
func (st *averagingStage) Execute(ctx context.Context, p *Pipeline) error {
	eligible := EligibleGroups(p.Run.Generated)
	if len(eligible) == 0 {
		return nil
	}

	var mu sync.Mutex
	groupErrs := make(map[string]error)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(averagingConcurrency)
	for _, group := range eligible {
		group := group
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			averaging.PrepContactRates(group)
			averaging.GenerateAverages(group, p.Run.Options.IgnoreZeroes)
			if err := averaging.ApplyContacts(group); err != nil {
				mu.Lock()
				groupErrs[group.PlanningGroup.ID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for id, err := range groupErrs {
		group := p.Run.GeneratedGroup(id)
		group.Metadata.ForecastStatus = types.ForecastStatus{
			IsForecast: false,
			Reason:     "Forecast transform failed",
		}
		st.svc.metrics.GroupsSkipped.WithLabelValues("transform_failed").Inc()
		st.svc.logger.WarnContext(ctx, "excluding planning group after failed transform",
			"run_id", p.Run.ID,
			"planning_group_id", id,
			"error", err,
		)
	}
	if len(groupErrs) == len(eligible) {
		return types.NewAppError(types.ErrCodeRunTransformFailed,
			"forecast transform failed for every planning group",
			errors.Join(valuesOf(groupErrs)...))
	}
	return nil
}

func valuesOf(m map[string]error) []error {
	out := make([]error, 0, len(m))
	for _, err := range m {
		out = append(out, err)
	}
	return out
}
