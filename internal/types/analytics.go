package types

// Wire shapes for the conversation aggregate query API and the short-term
// forecast APIs. Field names follow the platform's JSON contract.

// QueryPredicate matches one dimension value.
type QueryPredicate struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// QueryClause groups predicates under an and/or combinator.
type QueryClause struct {
	Type       string           `json:"type"`
	Predicates []QueryPredicate `json:"predicates"`
}

// QueryFilter is the top-level filter: clauses combined with Type, plus
// flat predicates that always apply.
type QueryFilter struct {
	Type       string           `json:"type"`
	Clauses    []QueryClause    `json:"clauses"`
	Predicates []QueryPredicate `json:"predicates"`
}

// AggregateQuery is the body posted to the conversation aggregates endpoint.
// One query covers one historical week.
type AggregateQuery struct {
	Interval    string      `json:"interval"`
	Granularity string      `json:"granularity"`
	TimeZone    string      `json:"timeZone"`
	GroupBy     []string    `json:"groupBy"`
	Filter      QueryFilter `json:"filter"`
	Metrics     []string    `json:"metrics"`
}

// MetricStats is the aggregate for one metric in one interval.
type MetricStats struct {
	Count float64 `json:"count"`
	Sum   float64 `json:"sum"`
	Max   float64 `json:"max,omitempty"`
	Min   float64 `json:"min,omitempty"`
}

// IntervalMetric pairs a metric name with its stats.
type IntervalMetric struct {
	Metric string      `json:"metric"`
	Stats  MetricStats `json:"stats"`
}

// IntervalData is one 15-minute slot of results. Interval is an ISO-8601
// start/end pair.
type IntervalData struct {
	Interval string           `json:"interval"`
	Metrics  []IntervalMetric `json:"metrics"`
}

// QueryGroupKey identifies which grouping a result row belongs to.
type QueryGroupKey struct {
	OutboundCampaignID string `json:"outboundCampaignId"`
	MediaType          string `json:"mediaType,omitempty"`
}

// QueryResultGroup is one grouped result row.
type QueryResultGroup struct {
	Group QueryGroupKey  `json:"group"`
	Data  []IntervalData `json:"data"`
}

// AggregateQueryResponse is the aggregate endpoint's response body.
type AggregateQueryResponse struct {
	Results []QueryResultGroup `json:"results"`
}

// InboundForecastGroup is one planning group's series in an inbound
// short-term forecast. Series are flat, week-start-relative, one value per
// 15-minute interval.
type InboundForecastGroup struct {
	PlanningGroupID                     string    `json:"planningGroupId"`
	OfferedPerInterval                  []float64 `json:"offeredPerInterval"`
	AverageHandleTimeSecondsPerInterval []float64 `json:"averageHandleTimeSecondsPerInterval"`
}

// InboundForecastResult is the data payload of a completed inbound forecast.
type InboundForecastResult struct {
	PlanningGroups []InboundForecastGroup `json:"planningGroups"`
}

// InboundForecastData wraps the result as returned by the data endpoint.
type InboundForecastData struct {
	Result InboundForecastResult `json:"result"`
}

// InboundGenerateResponse is the response of the asynchronous generate
// endpoint. Status is "Complete" when Result is populated immediately,
// "Processing" when completion arrives via notification for OperationID.
type InboundGenerateResponse struct {
	Status      string     `json:"status"`
	OperationID string     `json:"operationId,omitempty"`
	Result      *EntityRef `json:"result,omitempty"`
}

// ImportPlanningGroup is one group's flattened series in an import body:
// 768 values covering eight days, the business unit's first day replicated
// at the end.
type ImportPlanningGroup struct {
	PlanningGroupID                     string    `json:"planningGroupId"`
	OfferedPerInterval                  []float64 `json:"offeredPerInterval"`
	AverageHandleTimeSecondsPerInterval []float64 `json:"averageHandleTimeSecondsPerInterval"`
}

// ImportBody is the short-term forecast import payload, gzipped before
// upload.
type ImportBody struct {
	Description    string                `json:"description"`
	WeekCount      int                   `json:"weekCount"`
	PlanningGroups []ImportPlanningGroup `json:"planningGroups"`
}

// ImportUploadAttributes is returned by the upload-url endpoint: a
// presigned destination plus the headers the PUT must carry.
type ImportUploadAttributes struct {
	UploadKey string            `json:"uploadKey"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
}

// ImportResponse acknowledges a started import.
type ImportResponse struct {
	Status      string `json:"status"`
	OperationID string `json:"operationId,omitempty"`
}
