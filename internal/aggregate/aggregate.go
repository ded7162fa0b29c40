// Package aggregate folds raw conversation aggregate results into
// per-group, per-week interval matrices.
package aggregate

import (
	"context"
	"log/slog"

	"forecastgen/internal/intervals"
	"forecastgen/internal/types"
)

// Aggregator accumulates query results onto planning group forecasts.
type Aggregator struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// ProcessResults folds result rows into the matching groups' historical
// week records. Rows whose campaign matches no group are skipped with a
// warning; malformed intervals within a row are skipped the same way.
// Accumulation is additive, so results may arrive across any number of
// calls and in any order.
func (a *Aggregator) ProcessResults(ctx context.Context, results []types.QueryResultGroup, groups []*types.PlanningGroupForecast) {
	for _, row := range results {
		group := matchGroup(groups, row.Group.OutboundCampaignID)
		if group == nil {
			a.logger.WarnContext(ctx, "no planning group for campaign, skipping result row",
				"campaignId", row.Group.OutboundCampaignID)
			continue
		}
		a.accumulateRow(ctx, group, row)
	}
}

func (a *Aggregator) accumulateRow(ctx context.Context, group *types.PlanningGroupForecast, row types.QueryResultGroup) {
	for _, slot := range row.Data {
		start, err := intervals.ParseStart(slot.Interval)
		if err != nil {
			a.logger.WarnContext(ctx, "skipping malformed result interval",
				"interval", slot.Interval,
				"planningGroupId", group.PlanningGroup.ID,
				"error", err)
			continue
		}

		week := group.Week(intervals.WeekKey(start))
		day := intervals.DayIndex(start)
		idx := intervals.IntervalIndex(start)

		for _, metric := range slot.Metrics {
			switch metric.Metric {
			case "nOutboundAttempted":
				week.IntradayValues[types.MetricAttempted][day][idx] += metric.Stats.Count
			case "nOutboundConnected":
				week.IntradayValues[types.MetricConnected][day][idx] += metric.Stats.Count
			case "tHandle":
				// Handle time arrives in milliseconds; store seconds.
				week.IntradayValues[types.MetricHandleTime][day][idx] += metric.Stats.Sum / 1000
				week.IntradayValues[types.MetricHandled][day][idx] += metric.Stats.Count
			}
		}
	}
}

// ValidateHistory downgrades outbound groups that accumulated no historical
// weeks: they keep their place in the run but are excluded from forecast
// generation. Returns the number of groups still eligible.
func (a *Aggregator) ValidateHistory(ctx context.Context, groups []*types.PlanningGroupForecast) int {
	eligible := 0
	for _, group := range groups {
		if !group.Metadata.ForecastStatus.IsForecast {
			continue
		}
		if len(group.HistoricalWeeks) == 0 {
			group.Metadata.ForecastStatus = types.ForecastStatus{
				IsForecast: false,
				Reason:     types.ReasonNoHistoricalData,
			}
			a.logger.InfoContext(ctx, "excluding planning group with no historical data",
				"planningGroupId", group.PlanningGroup.ID)
			continue
		}
		eligible++
	}
	return eligible
}

func matchGroup(groups []*types.PlanningGroupForecast, campaignID string) *types.PlanningGroupForecast {
	for _, group := range groups {
		if group.Campaign != nil && group.Campaign.ID == campaignID {
			return group
		}
	}
	return nil
}
