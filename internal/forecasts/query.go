package forecasts

import (
	"forecastgen/internal/intervals"
	"forecastgen/internal/types"
)

const (
	granularity15m  = "PT15M"
	mediaTypeVoice  = "voice"
	dimCampaignID   = "outboundCampaignId"
	dimMediaType    = "mediaType"
	metricAttempted = "nOutboundAttempted"
	metricConnected = "nOutboundConnected"
	metricHandle    = "tHandle"
)

// ClassifyGroups sets each group's forecast eligibility. Groups without an
// outbound campaign are inbound-only; outbound groups with no planned
// contact volume have nothing to distribute. Eligible groups get their
// accumulators initialized.
func ClassifyGroups(groups []*types.PlanningGroupForecast) {
	for _, group := range groups {
		switch {
		case group.Campaign == nil || group.Campaign.ID == "":
			group.Metadata.ForecastMode = types.ModeInbound
			group.Metadata.ForecastStatus = types.ForecastStatus{
				IsForecast: false,
				Reason:     types.ReasonInboundGroup,
			}
		case group.Metadata.NumContacts <= 0:
			group.Metadata.ForecastMode = types.ModeOutbound
			group.Metadata.ForecastStatus = types.ForecastStatus{
				IsForecast: false,
				Reason:     types.ReasonZeroContacts,
			}
		default:
			group.Metadata.ForecastMode = types.ModeOutbound
			group.Metadata.ForecastStatus = types.ForecastStatus{IsForecast: true}
			group.HistoricalWeeks = []*types.WeekRecord{}
			group.ForecastData = types.MetricSet{}
		}
	}
}

// EligibleGroups returns the groups participating in outbound generation.
func EligibleGroups(groups []*types.PlanningGroupForecast) []*types.PlanningGroupForecast {
	var eligible []*types.PlanningGroupForecast
	for _, group := range groups {
		if group.Metadata.ForecastStatus.IsForecast {
			eligible = append(eligible, group)
		}
	}
	return eligible
}

// BuildQueries constructs one aggregate query per historical week for the
// eligible groups' campaigns: campaign predicates OR-ed together, media
// type pinned to voice, grouped by campaign at 15-minute granularity in
// the business unit's time zone.
func BuildQueries(run *types.ForecastRun, weeks []intervals.Interval) []types.AggregateQuery {
	var campaignPredicates []types.QueryPredicate
	for _, group := range EligibleGroups(run.Generated) {
		campaignPredicates = append(campaignPredicates, types.QueryPredicate{
			Dimension: dimCampaignID,
			Value:     group.Campaign.ID,
		})
	}
	if len(campaignPredicates) == 0 {
		return nil
	}

	queries := make([]types.AggregateQuery, 0, len(weeks))
	for _, week := range weeks {
		queries = append(queries, types.AggregateQuery{
			Interval:    week.String(),
			Granularity: granularity15m,
			TimeZone:    run.BusinessUnit.TimeZone,
			GroupBy:     []string{dimCampaignID},
			Filter: types.QueryFilter{
				Type: "and",
				Clauses: []types.QueryClause{{
					Type:       "or",
					Predicates: campaignPredicates,
				}},
				Predicates: []types.QueryPredicate{{
					Dimension: dimMediaType,
					Value:     mediaTypeVoice,
				}},
			},
			Metrics: []string{metricAttempted, metricConnected, metricHandle},
		})
	}
	return queries
}
