package external

import (
	"context"
	"fmt"
	"log/slog"

	"forecastgen/internal/types"
)

// Stub implementations let the service boot in local/test mode without
// platform credentials. They log every call and return predictable, safe
// defaults: one campaign's worth of synthetic history and an immediately
// complete inbound forecast.

// StubAnalyticsService implements AnalyticsService with canned results.
type StubAnalyticsService struct {
	logger *slog.Logger

	// Results is returned from every query. Leave nil for an empty set.
	Results []types.QueryResultGroup
}

func NewStubAnalyticsService(logger *slog.Logger) *StubAnalyticsService {
	return &StubAnalyticsService{logger: logger}
}

func (s *StubAnalyticsService) ExecuteAggregateQuery(ctx context.Context, query types.AggregateQuery) (*types.AggregateQueryResponse, error) {
	s.logger.InfoContext(ctx, "stub: ExecuteAggregateQuery called",
		"interval", query.Interval,
		"granularity", query.Granularity,
	)
	return &types.AggregateQueryResponse{Results: s.Results}, nil
}

// StubWFMService implements WFMService by logging calls and returning
// immediately complete responses.
type StubWFMService struct {
	logger *slog.Logger

	// InboundData is returned from GetInboundForecastData. Leave nil for
	// an empty forecast.
	InboundData *types.InboundForecastData
}

func NewStubWFMService(logger *slog.Logger) *StubWFMService {
	return &StubWFMService{logger: logger}
}

func (s *StubWFMService) GenerateInboundForecast(ctx context.Context, buID, weekDateID, description string) (*types.InboundGenerateResponse, error) {
	s.logger.InfoContext(ctx, "stub: GenerateInboundForecast called",
		"business_unit_id", buID,
		"week_date_id", weekDateID,
	)
	return &types.InboundGenerateResponse{
		Status: "Complete",
		Result: &types.EntityRef{ID: fmt.Sprintf("fc_stub_%s", weekDateID)},
	}, nil
}

func (s *StubWFMService) GetInboundForecastData(ctx context.Context, buID, weekDateID, forecastID string) (*types.InboundForecastData, error) {
	s.logger.InfoContext(ctx, "stub: GetInboundForecastData called",
		"forecast_id", forecastID,
	)
	if s.InboundData != nil {
		return s.InboundData, nil
	}
	return &types.InboundForecastData{}, nil
}

func (s *StubWFMService) DeleteInboundForecast(ctx context.Context, buID, weekDateID, forecastID string) error {
	s.logger.InfoContext(ctx, "stub: DeleteInboundForecast called",
		"forecast_id", forecastID,
	)
	return nil
}

func (s *StubWFMService) CreateImportUploadURL(ctx context.Context, buID, weekDateID string, contentLength int) (*types.ImportUploadAttributes, error) {
	s.logger.InfoContext(ctx, "stub: CreateImportUploadURL called",
		"content_length", contentLength,
	)
	return &types.ImportUploadAttributes{
		UploadKey: fmt.Sprintf("upload_stub_%s", weekDateID),
		URL:       "https://uploads.stub.local/forecast",
		Headers:   map[string]string{"Content-Encoding": "gzip"},
	}, nil
}

func (s *StubWFMService) UploadImportBody(ctx context.Context, attrs *types.ImportUploadAttributes, gzipped []byte) error {
	s.logger.InfoContext(ctx, "stub: UploadImportBody called",
		"upload_key", attrs.UploadKey,
		"payload_len", len(gzipped),
	)
	return nil
}

func (s *StubWFMService) RunImport(ctx context.Context, buID, weekDateID, uploadKey string) (*types.ImportResponse, error) {
	s.logger.InfoContext(ctx, "stub: RunImport called",
		"upload_key", uploadKey,
	)
	return &types.ImportResponse{Status: "Complete"}, nil
}

// StubNotificationService resolves every awaited operation immediately.
type StubNotificationService struct {
	logger *slog.Logger
}

func NewStubNotificationService(logger *slog.Logger) *StubNotificationService {
	return &StubNotificationService{logger: logger}
}

func (s *StubNotificationService) AwaitOperation(ctx context.Context, operationID string) (string, error) {
	s.logger.InfoContext(ctx, "stub: AwaitOperation called",
		"operation_id", operationID,
	)
	return fmt.Sprintf("fc_stub_%s", operationID), nil
}

var _ AnalyticsService = (*StubAnalyticsService)(nil)
var _ WFMService = (*StubWFMService)(nil)
var _ NotificationService = (*StubNotificationService)(nil)
