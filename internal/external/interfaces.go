package external

import (
	"context"

	"forecastgen/internal/types"
)

// AnalyticsService executes conversation aggregate queries.
type AnalyticsService interface {
	ExecuteAggregateQuery(ctx context.Context, query types.AggregateQuery) (*types.AggregateQueryResponse, error)
}

// WFMService covers the workforce management operations the pipeline
// needs: inbound short-term forecast lifecycle and forecast import.
type WFMService interface {
	GenerateInboundForecast(ctx context.Context, buID, weekDateID, description string) (*types.InboundGenerateResponse, error)
	GetInboundForecastData(ctx context.Context, buID, weekDateID, forecastID string) (*types.InboundForecastData, error)
	DeleteInboundForecast(ctx context.Context, buID, weekDateID, forecastID string) error
	CreateImportUploadURL(ctx context.Context, buID, weekDateID string, contentLength int) (*types.ImportUploadAttributes, error)
	UploadImportBody(ctx context.Context, attrs *types.ImportUploadAttributes, gzipped []byte) error
	RunImport(ctx context.Context, buID, weekDateID, uploadKey string) (*types.ImportResponse, error)
}

// NotificationService delivers the terminal result of an asynchronous
// platform operation. Implementations hide the notification transport;
// Await blocks until the operation completes or ctx is done and returns
// the resulting forecast id exactly once per operation.
type NotificationService interface {
	AwaitOperation(ctx context.Context, operationID string) (string, error)
}
