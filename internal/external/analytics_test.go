package external

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastgen/internal/types"
)

func TestAnalyticsClient_ExecuteAggregateQuery(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery types.AggregateQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))

		json.NewEncoder(w).Encode(types.AggregateQueryResponse{
			Results: []types.QueryResultGroup{
				{Group: types.QueryGroupKey{OutboundCampaignID: "camp-1"}},
			},
		})
	}))
	defer srv.Close()

	client := NewAnalyticsClient(newTestBaseClient(t), srv.URL, types.SecretString("tok-1"))
	resp, err := client.ExecuteAggregateQuery(context.Background(), types.AggregateQuery{
		Interval:    "2023-06-04T00:00:00Z/2023-06-10T23:59:59Z",
		Granularity: "PT15M",
		TimeZone:    "UTC",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/analytics/conversations/aggregates/query", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "PT15M", gotQuery.Granularity)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "camp-1", resp.Results[0].Group.OutboundCampaignID)
}

func TestAnalyticsClient_RejectedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad filter"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewAnalyticsClient(newTestBaseClient(t), srv.URL, types.SecretString("tok-1"))
	_, err := client.ExecuteAggregateQuery(context.Background(), types.AggregateQuery{})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeUpstreamRejected, types.AsAppError(err).Code)
}

func TestWFMClient_ImportFlow(t *testing.T) {
	var uploadedBody []byte
	uploadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		uploadedBody = body
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		w.WriteHeader(http.StatusOK)
	}))
	defer uploadSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/workforcemanagement/businessunits/bu-1/weeks/2023-06-18/shorttermforecasts/import/uploadurl":
			json.NewEncoder(w).Encode(types.ImportUploadAttributes{
				UploadKey: "key-1",
				URL:       uploadSrv.URL,
				Headers:   map[string]string{"Content-Encoding": "gzip"},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/workforcemanagement/businessunits/bu-1/weeks/2023-06-18/shorttermforecasts/import":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "key-1", body["uploadKey"])
			json.NewEncoder(w).Encode(types.ImportResponse{Status: "Complete"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer apiSrv.Close()

	client := NewWFMClient(newTestBaseClient(t), apiSrv.URL, types.SecretString("tok-1"),
		&http.Client{Timeout: 5 * time.Second})

	attrs, err := client.CreateImportUploadURL(context.Background(), "bu-1", "2023-06-18", 128)
	require.NoError(t, err)
	require.NoError(t, client.UploadImportBody(context.Background(), attrs, []byte("gzipped-payload")))
	resp, err := client.RunImport(context.Background(), "bu-1", "2023-06-18", attrs.UploadKey)
	require.NoError(t, err)

	assert.Equal(t, "Complete", resp.Status)
	assert.Equal(t, "gzipped-payload", string(uploadedBody))
}

func TestWFMClient_InboundLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/workforcemanagement/businessunits/bu-1/weeks/2023-06-18/shorttermforecasts/generate":
			assert.Equal(t, "true", r.URL.Query().Get("forceAsync"))
			json.NewEncoder(w).Encode(types.InboundGenerateResponse{
				Status: "Processing", OperationID: "op-1",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/workforcemanagement/businessunits/bu-1/weeks/2023-06-18/shorttermforecasts/fc-1/data":
			json.NewEncoder(w).Encode(types.InboundForecastData{
				Result: types.InboundForecastResult{
					PlanningGroups: []types.InboundForecastGroup{{PlanningGroupID: "pg-1"}},
				},
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v2/workforcemanagement/businessunits/bu-1/weeks/2023-06-18/shorttermforecasts/fc-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewWFMClient(newTestBaseClient(t), srv.URL, types.SecretString("tok-1"), nil)

	gen, err := client.GenerateInboundForecast(context.Background(), "bu-1", "2023-06-18", "weekly outbound run")
	require.NoError(t, err)
	assert.Equal(t, "Processing", gen.Status)
	assert.Equal(t, "op-1", gen.OperationID)

	data, err := client.GetInboundForecastData(context.Background(), "bu-1", "2023-06-18", "fc-1")
	require.NoError(t, err)
	require.Len(t, data.Result.PlanningGroups, 1)

	require.NoError(t, client.DeleteInboundForecast(context.Background(), "bu-1", "2023-06-18", "fc-1"))
}
