// Package averaging turns accumulated historical weeks into forecast
// baselines: contact rates, cross-week averages, and contact distribution.
package averaging

import (
	"fmt"
	"math"

	"forecastgen/internal/types"
)

// Totals returns per-day sums and the weekly sum of a matrix.
func Totals(m *types.Matrix) (daily []float64, weekly float64) {
	daily = m.DailyTotals()
	for _, v := range daily {
		weekly += v
	}
	return daily, weekly
}

// WeightedAverages divides data by weights cell-wise, day-wise, and
// week-wise. A zero interval weight is treated as 1 so bare sums pass
// through; zero daily or weekly weights yield zero averages.
func WeightedAverages(data, weights *types.Matrix) (interval *types.Matrix, daily []float64, weekly float64) {
	interval = &types.Matrix{}
	daily = make([]float64, types.DaysPerWeek)

	var weeklyData, weeklyWeight float64
	for day := 0; day < types.DaysPerWeek; day++ {
		var dayData, dayWeight float64
		for idx := 0; idx < types.IntervalsPerDay; idx++ {
			w := weights[day][idx]
			dayData += data[day][idx]
			dayWeight += w
			if w == 0 {
				w = 1
			}
			interval[day][idx] = data[day][idx] / w
		}
		if dayWeight != 0 {
			daily[day] = dayData / dayWeight
		}
		weeklyData += dayData
		weeklyWeight += dayWeight
	}
	if weeklyWeight != 0 {
		weekly = weeklyData / weeklyWeight
	}
	return interval, daily, weekly
}

// PrepContactRates fills each historical week's contact rate from its
// attempted and connected counts. Intervals with zero attempts rate as
// zero.
func PrepContactRates(group *types.PlanningGroupForecast) {
	for _, week := range group.HistoricalWeeks {
		attempted := week.IntradayValues[types.MetricAttempted]
		connected := week.IntradayValues[types.MetricConnected]
		rate := week.IntradayValues[types.MetricContactRate]
		for day := 0; day < types.DaysPerWeek; day++ {
			for idx := 0; idx < types.IntervalsPerDay; idx++ {
				if attempted[day][idx] != 0 {
					rate[day][idx] = connected[day][idx] / attempted[day][idx]
				}
			}
		}
	}
}

// GenerateAverages averages each historical metric across the group's
// weeks into ForecastData, then derives the normalized per-day contact
// rate distribution. With ignoreZeroes set, a week contributes to a day's
// averages only when that week has activity on that day for the metric.
func GenerateAverages(group *types.PlanningGroupForecast, ignoreZeroes bool) {
	group.ForecastData = types.NewMetricSet(types.HistoricalMetrics...)

	for _, metric := range types.HistoricalMetrics {
		sums := &types.Matrix{}
		counts := &types.Matrix{}
		for _, week := range group.HistoricalWeeks {
			values := week.IntradayValues[metric]
			for day := 0; day < types.DaysPerWeek; day++ {
				if ignoreZeroes && values.DayTotal(day) == 0 {
					continue
				}
				for idx := 0; idx < types.IntervalsPerDay; idx++ {
					sums[day][idx] += values[day][idx]
					counts[day][idx]++
				}
			}
		}

		avg := group.ForecastData[metric]
		for day := 0; day < types.DaysPerWeek; day++ {
			for idx := 0; idx < types.IntervalsPerDay; idx++ {
				if counts[day][idx] != 0 {
					avg[day][idx] = sums[day][idx] / counts[day][idx]
				}
			}
		}
	}

	group.ForecastData[types.MetricRateDistrib] = normalizeByDay(group.ForecastData[types.MetricContactRate])
}

// normalizeByDay scales each day so it sums to 1. All-zero days stay zero.
func normalizeByDay(m *types.Matrix) *types.Matrix {
	out := &types.Matrix{}
	for day := 0; day < types.DaysPerWeek; day++ {
		total := m.DayTotal(day)
		if total == 0 {
			continue
		}
		for idx := 0; idx < types.IntervalsPerDay; idx++ {
			out[day][idx] = m[day][idx] / total
		}
	}
	return out
}

// DistributeData spreads total across the distribution proportionally to
// its weights. A zero-sum distribution yields all zeros. The result may be
// fractional; rounding happens only at export.
func DistributeData(total float64, distribution []float64) ([]float64, error) {
	var sum float64
	for _, w := range distribution {
		sum += w
	}
	out := make([]float64, len(distribution))
	if sum == 0 {
		return out, nil
	}
	for i, w := range distribution {
		v := total * w / sum
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidDistrib,
				fmt.Sprintf("distribution produced non-finite value at interval %d", i), nil)
		}
		out[i] = v
	}
	return out, nil
}

// ApplyContacts distributes the group's planned contact volume over the
// week: each day's target is the rounded share of the weekly contact rate
// mass, then spread across the day by the rate distribution. The result is
// stored as the contacts metric.
func ApplyContacts(group *types.PlanningGroupForecast) error {
	rate := group.ForecastData[types.MetricContactRate]
	distrib := group.ForecastData[types.MetricRateDistrib]
	daily, weekly := Totals(rate)

	contacts := &types.Matrix{}
	if weekly != 0 {
		for day := 0; day < types.DaysPerWeek; day++ {
			dayTarget := math.Round(group.Metadata.NumContacts * daily[day] / weekly)
			row, err := DistributeData(dayTarget, distrib.Day(day))
			if err != nil {
				return types.AsAppError(err).WithDetail("planningGroupId", group.PlanningGroup.ID)
			}
			contacts.SetDay(day, row)
		}
	}
	group.ForecastData[types.MetricContacts] = contacts
	return nil
}
