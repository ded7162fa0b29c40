package forecasts

import (
	"context"
	"fmt"

	"forecastgen/internal/intervals"
	"forecastgen/internal/types"
)

type inboundStage struct{ svc *Service }

func (st *inboundStage) Name() string               { return "inbound_merge" }
func (st *inboundStage) EntryState() types.RunState { return types.RunInboundMerging }

// Execute generates an inbound short-term forecast for the run's week and
// merges its series into the run's inbound planning groups. The generated
// forecast is deleted afterwards unless the run retains it.
func (st *inboundStage) Execute(ctx context.Context, p *Pipeline) error {
	run := p.Run

	forecastID, err := st.generate(ctx, run)
	if err != nil {
		return err
	}

	data, err := st.svc.wfm.GetInboundForecastData(ctx, run.BusinessUnit.ID, run.Options.WeekStart, forecastID)
	if err != nil {
		st.svc.metrics.UpstreamCalls.WithLabelValues("wfm", "error").Inc()
		return types.NewAppError(types.ErrCodeInboundDataUnavailable,
			"failed to fetch inbound forecast data", err)
	}
	st.svc.metrics.UpstreamCalls.WithLabelValues("wfm", "ok").Inc()

	startDay, err := intervals.ParseWeekday(run.BusinessUnit.StartDayOfWeek)
	if err != nil {
		return err
	}
	MergeInboundData(run, &data.Result, int(startDay))

	if run.Options.RetainInbound {
		run.InboundForecastID = forecastID
	} else if err := st.svc.wfm.DeleteInboundForecast(ctx, run.BusinessUnit.ID, run.Options.WeekStart, forecastID); err != nil {
		// The merge already succeeded; an undeleted scratch forecast is
		// not worth failing the run over.
		st.svc.logger.WarnContext(ctx, "failed to delete scratch inbound forecast",
			"run_id", run.ID,
			"forecast_id", forecastID,
			"error", err,
		)
	}
	return nil
}

// generate kicks off inbound generation and resolves the forecast id,
// waiting on the notification channel when the platform answers
// asynchronously.
func (st *inboundStage) generate(ctx context.Context, run *types.ForecastRun) (string, error) {
	resp, err := st.svc.wfm.GenerateInboundForecast(ctx, run.BusinessUnit.ID, run.Options.WeekStart, run.Options.Description)
	if err != nil {
		st.svc.metrics.UpstreamCalls.WithLabelValues("wfm", "error").Inc()
		return "", types.NewAppError(types.ErrCodeInboundGenerationFailed,
			"inbound forecast generation request failed", err)
	}
	st.svc.metrics.UpstreamCalls.WithLabelValues("wfm", "ok").Inc()

	switch resp.Status {
	case "Complete":
		if resp.Result == nil || resp.Result.ID == "" {
			return "", types.NewAppError(types.ErrCodeInboundGenerationFailed,
				"inbound generation reported complete without a forecast reference", nil)
		}
		return resp.Result.ID, nil
	case "Processing":
		forecastID, err := st.svc.notifications.AwaitOperation(ctx, resp.OperationID)
		if err != nil {
			return "", types.NewAppError(types.ErrCodeInboundGenerationFailed,
				"inbound forecast generation did not complete", err)
		}
		return forecastID, nil
	default:
		return "", types.NewAppError(types.ErrCodeInboundGenerationFailed,
			fmt.Sprintf("inbound generation returned unexpected status %q", resp.Status), nil)
	}
}

// MergeInboundData installs inbound series onto the run's inbound planning
// groups. Incoming series are flat and start at the business unit's week
// start day; they are trimmed to one week, folded into days, and rotated
// so day 0 is Sunday. Handled counts are approximated by offered volume,
// and handle time is reconstructed as offered times average handle time.
// Groups that receive data become forecastable: their exclusion status is
// cleared so modifications and export treat them like outbound groups.
func MergeInboundData(run *types.ForecastRun, result *types.InboundForecastResult, startDayIndex int) {
	for _, inbound := range result.PlanningGroups {
		group := run.GeneratedGroup(inbound.PlanningGroupID)
		if group == nil || group.Metadata.ForecastMode != types.ModeInbound {
			continue
		}

		offered := trimToWeek(inbound.OfferedPerInterval)
		aht := trimToWeek(inbound.AverageHandleTimeSecondsPerInterval)

		products := make([]float64, types.IntervalsPerWeek)
		for i := range products {
			products[i] = offered[i] * aht[i]
		}

		contacts := foldWeek(offered, startDayIndex)
		handleTime := foldWeek(products, startDayIndex)

		group.ForecastData = types.MetricSet{
			types.MetricContacts:   contacts,
			types.MetricHandleTime: handleTime,
			// Handled counts are not part of the inbound payload; offered
			// volume is the documented approximation.
			types.MetricHandled: contacts.Clone(),
		}
		// The group now carries forecast data, so it participates in
		// modifications and export like any outbound group.
		group.Metadata.ForecastStatus = types.ForecastStatus{IsForecast: true}
	}
}

// trimToWeek pads or truncates a flat series to exactly one week.
func trimToWeek(series []float64) []float64 {
	out := make([]float64, types.IntervalsPerWeek)
	copy(out, series)
	return out
}

// foldWeek chunks a flat week-start-relative series into a Sunday-indexed
// matrix: flat day k lands on weekday (startDayIndex + k) mod 7.
func foldWeek(flat []float64, startDayIndex int) *types.Matrix {
	m := &types.Matrix{}
	for k := 0; k < types.DaysPerWeek; k++ {
		day := (startDayIndex + k) % types.DaysPerWeek
		m.SetDay(day, flat[k*types.IntervalsPerDay:(k+1)*types.IntervalsPerDay])
	}
	return m
}
