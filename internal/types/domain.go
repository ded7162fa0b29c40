package types

// Shape of a forecast week. All interval series in the system are laid out
// day-major: 7 days of 96 fifteen-minute intervals, day 0 = Sunday.
const (
	DaysPerWeek      = 7
	IntervalsPerDay  = 96
	IntervalsPerWeek = DaysPerWeek * IntervalsPerDay
	IntervalMinutes  = 15
)

// Metric identifies an interval-level measure tracked per planning group.
type Metric string

const (
	MetricContactRate Metric = "rContact"
	MetricAttempted   Metric = "nAttempted"
	MetricConnected   Metric = "nConnected"
	MetricHandled     Metric = "nHandled"
	MetricHandleTime  Metric = "tHandle"
	MetricContacts    Metric = "nContacts"
	MetricRateDistrib Metric = "rContactAverageDistrib"
)

// HistoricalMetrics are the measures accumulated per historical week and
// averaged into the forecast baseline.
var HistoricalMetrics = []Metric{
	MetricContactRate,
	MetricAttempted,
	MetricConnected,
	MetricHandled,
	MetricHandleTime,
}

// Matrix is a week of interval values, indexed [day][interval].
type Matrix [DaysPerWeek][IntervalsPerDay]float64

// Day returns a mutable view of one day's 96 intervals.
func (m *Matrix) Day(day int) []float64 { return m[day][:] }

// SetDay copies values into the given day. Panics if values does not hold
// exactly one day of intervals.
func (m *Matrix) SetDay(day int, values []float64) {
	if len(values) != IntervalsPerDay {
		panic("matrix: day must hold 96 intervals")
	}
	copy(m[day][:], values)
}

// DayTotal sums one day's intervals.
func (m *Matrix) DayTotal(day int) float64 {
	var total float64
	for _, v := range m[day] {
		total += v
	}
	return total
}

// DailyTotals sums each day's intervals.
func (m *Matrix) DailyTotals() []float64 {
	totals := make([]float64, DaysPerWeek)
	for day := range m {
		totals[day] = m.DayTotal(day)
	}
	return totals
}

// Total sums every interval in the week.
func (m *Matrix) Total() float64 {
	var total float64
	for day := range m {
		total += m.DayTotal(day)
	}
	return total
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	out := *m
	return &out
}

// MetricSet holds one matrix per metric.
type MetricSet map[Metric]*Matrix

// NewMetricSet allocates a zeroed matrix for each requested metric.
func NewMetricSet(metrics ...Metric) MetricSet {
	set := make(MetricSet, len(metrics))
	for _, metric := range metrics {
		set[metric] = &Matrix{}
	}
	return set
}

// Clone deep-copies the set.
func (s MetricSet) Clone() MetricSet {
	out := make(MetricSet, len(s))
	for metric, matrix := range s {
		out[metric] = matrix.Clone()
	}
	return out
}

// EntityRef is a platform entity reference.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ForecastMode distinguishes how a planning group is forecast.
type ForecastMode string

const (
	ModeOutbound ForecastMode = "outbound"
	ModeInbound  ForecastMode = "inbound"
)

// ForecastStatus records whether a group participates in outbound forecast
// generation, and why not when it does not.
type ForecastStatus struct {
	IsForecast bool   `json:"isForecast"`
	Reason     string `json:"reason,omitempty"`
}

// Exclusion reasons surfaced on ForecastStatus.
const (
	ReasonInboundGroup     = "Inbound planning groups not forecasted"
	ReasonZeroContacts     = "Zero forecast outbound contacts"
	ReasonNoHistoricalData = "No historical data"
)

// GroupMetadata holds the planner-supplied settings for a planning group.
type GroupMetadata struct {
	NumContacts    float64        `json:"numContacts"`
	ForecastMode   ForecastMode   `json:"forecastMode"`
	ForecastStatus ForecastStatus `json:"forecastStatus"`
}

// WeekRecord accumulates one historical week of interval data for a group.
type WeekRecord struct {
	WeekNumber     string    `json:"weekNumber"`
	IntradayValues MetricSet `json:"intradayValues"`
}

// NewWeekRecord allocates a record with zeroed historical metrics.
func NewWeekRecord(weekNumber string) *WeekRecord {
	return &WeekRecord{
		WeekNumber:     weekNumber,
		IntradayValues: NewMetricSet(HistoricalMetrics...),
	}
}

// PlanningGroupForecast is the unit of work: one planning group, its
// historical weeks, and its forecast data.
type PlanningGroupForecast struct {
	PlanningGroup EntityRef     `json:"planningGroup"`
	Queue         EntityRef     `json:"queue"`
	Campaign      *EntityRef    `json:"campaign,omitempty"`
	Metadata      GroupMetadata `json:"metadata"`

	HistoricalWeeks []*WeekRecord `json:"historicalWeeks,omitempty"`
	ForecastData    MetricSet     `json:"forecastData,omitempty"`
}

// Week returns the historical record for the given week key, creating it on
// first use. Each distinct key gets its own accumulator.
func (g *PlanningGroupForecast) Week(weekNumber string) *WeekRecord {
	for _, week := range g.HistoricalWeeks {
		if week.WeekNumber == weekNumber {
			return week
		}
	}
	week := NewWeekRecord(weekNumber)
	g.HistoricalWeeks = append(g.HistoricalWeeks, week)
	return week
}

// Clone deep-copies the group.
func (g *PlanningGroupForecast) Clone() *PlanningGroupForecast {
	out := *g
	if g.Campaign != nil {
		campaign := *g.Campaign
		out.Campaign = &campaign
	}
	if g.HistoricalWeeks != nil {
		out.HistoricalWeeks = make([]*WeekRecord, len(g.HistoricalWeeks))
		for i, week := range g.HistoricalWeeks {
			out.HistoricalWeeks[i] = &WeekRecord{
				WeekNumber:     week.WeekNumber,
				IntradayValues: week.IntradayValues.Clone(),
			}
		}
	}
	if g.ForecastData != nil {
		out.ForecastData = g.ForecastData.Clone()
	}
	return &out
}

// BusinessUnitSettings carries the business-unit attributes forecast
// generation depends on.
type BusinessUnitSettings struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name,omitempty"`
	TimeZone       string `json:"timeZone" validate:"required"`
	StartDayOfWeek string `json:"startDayOfWeek" validate:"required"`
}
