package curve

import (
	"fmt"
	"log/slog"

	"forecastgen/internal/types"
)

// Operation names a curve transformation.
type Operation string

const (
	OpSmooth    Operation = "smooth"
	OpTrendline Operation = "trendline"
	OpFlatten   Operation = "flatten"
	OpReset     Operation = "reset"
)

// Target selects which forecast series a modification applies to.
type Target string

const (
	TargetOffered Target = "offered"
	TargetAHT     Target = "aht"
	TargetBoth    Target = "both"
)

// Request describes one modification. Weekly operations act on daily
// totals and rescale each day's curve to the new total; day operations act
// on a single day's 96-interval series.
type Request struct {
	PlanningGroupID string    `json:"planningGroupId" validate:"required"`
	Operation       Operation `json:"operation" validate:"required,oneof=smooth trendline flatten reset"`
	Target          Target    `json:"target" validate:"required,oneof=offered aht both"`
	Weekly          bool      `json:"weekly"`
	Day             int       `json:"day" validate:"min=0,max=6"`
}

// Modifier applies curve modifications to a run's working forecast.
type Modifier struct {
	logger *slog.Logger
}

func NewModifier(logger *slog.Logger) *Modifier {
	return &Modifier{logger: logger}
}

// Apply executes the requested modification against the run's modified
// copy of the group. On error the group is left untouched; other groups
// are never affected.
func (m *Modifier) Apply(run *types.ForecastRun, req Request) error {
	if run.State != types.RunReady {
		return types.NewAppError(types.ErrCodeRunNotReady,
			fmt.Sprintf("run %s is %s, modifications require a ready run", run.ID, run.State), nil)
	}
	group := run.ModifiedGroup(req.PlanningGroupID)
	if group == nil {
		return types.NewAppError(types.ErrCodeRunGroupNotFound,
			fmt.Sprintf("planning group %s not in run %s", req.PlanningGroupID, run.ID), nil)
	}
	if !group.Metadata.ForecastStatus.IsForecast {
		return types.NewAppError(types.ErrCodeValidationInvalidOperation,
			fmt.Sprintf("planning group %s is excluded from forecasting: %s",
				req.PlanningGroupID, group.Metadata.ForecastStatus.Reason), nil)
	}

	if req.Operation == OpReset {
		return m.reset(run, group, req)
	}

	// Work on a clone so a failed transform leaves the group unmodified.
	working := group.ForecastData.Clone()
	if err := m.transform(working, req); err != nil {
		m.logger.Warn("modification failed, group left unmodified",
			"planningGroupId", req.PlanningGroupID,
			"operation", req.Operation,
			"error", err)
		return types.AsAppError(err).WithDetail("planningGroupId", req.PlanningGroupID)
	}
	group.ForecastData = working
	return nil
}

func (m *Modifier) transform(data types.MetricSet, req Request) error {
	op, err := operationFunc(req.Operation)
	if err != nil {
		return err
	}

	if req.Target == TargetOffered || req.Target == TargetBoth {
		if err := m.applyToMetric(data, types.MetricContacts, op, req, true); err != nil {
			return err
		}
	}
	if req.Target == TargetAHT || req.Target == TargetBoth {
		// Handle-time modifications are meant to move totals, so sums are
		// not maintained.
		if err := m.applyToMetric(data, types.MetricHandled, op, req, false); err != nil {
			return err
		}
		if err := m.applyToMetric(data, types.MetricHandleTime, op, req, false); err != nil {
			return err
		}
	}
	return nil
}

func (m *Modifier) applyToMetric(data types.MetricSet, metric types.Metric, op func([]float64) []float64, req Request, maintainSum bool) error {
	matrix, ok := data[metric]
	if !ok {
		return types.NewAppError(types.ErrCodeValidationInvalidOperation,
			fmt.Sprintf("forecast has no %s series", metric), nil)
	}

	if req.Weekly {
		originalTotals := matrix.DailyTotals()
		var weekly float64
		for _, v := range originalTotals {
			weekly += v
		}
		modified := op(originalTotals)
		if maintainSum {
			modified = MaintainOriginalSum(modified, weekly)
		}
		data[metric] = ScaleMatrixByDayTotals(matrix, modified)
		return nil
	}

	day := matrix.Day(req.Day)
	original := matrix.DayTotal(req.Day)
	modified := op(day)
	if maintainSum {
		modified = MaintainOriginalSum(modified, original)
	}
	matrix.SetDay(req.Day, modified)
	return nil
}

func (m *Modifier) reset(run *types.ForecastRun, group *types.PlanningGroupForecast, req Request) error {
	pristine := run.GeneratedGroup(req.PlanningGroupID)
	if pristine == nil {
		return types.NewAppError(types.ErrCodeRunGroupNotFound,
			fmt.Sprintf("planning group %s has no generated forecast", req.PlanningGroupID), nil)
	}

	metrics := targetMetrics(req.Target)
	for _, metric := range metrics {
		source, ok := pristine.ForecastData[metric]
		if !ok {
			continue
		}
		if req.Weekly {
			group.ForecastData[metric] = source.Clone()
			continue
		}
		group.ForecastData[metric].SetDay(req.Day, source.Day(req.Day))
	}
	return nil
}

func targetMetrics(target Target) []types.Metric {
	switch target {
	case TargetOffered:
		return []types.Metric{types.MetricContacts}
	case TargetAHT:
		return []types.Metric{types.MetricHandled, types.MetricHandleTime}
	default:
		return []types.Metric{types.MetricContacts, types.MetricHandled, types.MetricHandleTime}
	}
}

func operationFunc(op Operation) (func([]float64) []float64, error) {
	switch op {
	case OpSmooth:
		return Smooth, nil
	case OpTrendline:
		return TrendFit, nil
	case OpFlatten:
		return Flatten, nil
	default:
		return nil, types.NewAppError(types.ErrCodeValidationInvalidOperation,
			fmt.Sprintf("unknown operation %q", op), nil)
	}
}

// ScaleMatrixByDayTotals rescales each day of m so it sums to the matching
// target total. Days whose current total is zero are left untouched.
func ScaleMatrixByDayTotals(m *types.Matrix, targets []float64) *types.Matrix {
	out := m.Clone()
	for day := 0; day < types.DaysPerWeek && day < len(targets); day++ {
		current := m.DayTotal(day)
		if current == 0 {
			continue
		}
		factor := targets[day] / current
		for idx := 0; idx < types.IntervalsPerDay; idx++ {
			out[day][idx] = m[day][idx] * factor
		}
	}
	return out
}
