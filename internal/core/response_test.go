package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastgen/internal/types"
)

func TestError_AppErrorMapping(t *testing.T) {
	err := types.NewAppError(types.ErrCodeRunNotFound, "run missing", nil).
		WithDetail("runId", "r-1")

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Error(rec, req, err)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run_not_found", resp.Error.Code)
	assert.Equal(t, "run missing", resp.Error.Message)
	assert.Equal(t, "r-1", resp.Error.Details["runId"])
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestError_GenericErrorIsOpaque(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), string(types.ErrCodeInternal))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"syntax error", "{not json", "malformed JSON"},
		{"unknown field", `{"name":"a","extra":1}`, "unknown field"},
		{"empty body", "", "must not be empty"},
		{"multiple values", `{"name":"a"}{"name":"b"}`, "single JSON object"},
		{"type mismatch", `{"name":42}`, "invalid value for field"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(rec, req, &dst)
			require.Error(t, err)

			appErr := types.AsAppError(err)
			assert.Equal(t, errCodeValidationInvalidJSON, appErr.Code)
			assert.Contains(t, appErr.Message, tc.msg)
		})
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a"}`))
		rec := httptest.NewRecorder()

		var dst payload
		require.NoError(t, DecodeJSON(rec, req, &dst))
		assert.Equal(t, "a", dst.Name)
	})

	t.Run("oversized body", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), maxRequestBodySize+1)
		body := `{"name":"` + string(big) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		rec := httptest.NewRecorder()

		var dst payload
		err := DecodeJSON(rec, req, &dst)
		require.Error(t, err)
		assert.Contains(t, types.AsAppError(err).Message, "1MB")
	})
}
