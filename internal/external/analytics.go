package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"forecastgen/internal/types"
)

const aggregateQueryPath = "/api/v2/analytics/conversations/aggregates/query"

// AnalyticsClient talks to the conversation analytics API.
type AnalyticsClient struct {
	base    *BaseClient
	baseURL string
	token   types.SecretString
}

var _ AnalyticsService = (*AnalyticsClient)(nil)

func NewAnalyticsClient(base *BaseClient, baseURL string, token types.SecretString) *AnalyticsClient {
	return &AnalyticsClient{base: base, baseURL: baseURL, token: token}
}

// ExecuteAggregateQuery posts one aggregate query and decodes the grouped
// results. An empty result set is returned as-is; the caller decides
// whether that is fatal.
func (c *AnalyticsClient) ExecuteAggregateQuery(ctx context.Context, query types.AggregateQuery) (*types.AggregateQueryResponse, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternal, "failed to encode aggregate query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+aggregateQueryPath, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternal, "failed to build aggregate query request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewAppError(types.ErrCodeUpstreamRejected,
			fmt.Sprintf("aggregate query rejected with status %d", resp.StatusCode), nil).
			WithDetail("body", string(body))
	}

	var decoded types.AggregateQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamRejected,
			"failed to decode aggregate query response", err)
	}
	return &decoded, nil
}
