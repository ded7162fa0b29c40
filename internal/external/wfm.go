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

// WFMClient talks to the workforce management short-term forecast APIs.
type WFMClient struct {
	base    *BaseClient
	baseURL string
	token   types.SecretString

	// uploader performs the presigned PUT. Separate from base because the
	// upload destination supplies its own auth via headers.
	uploader *http.Client
}

var _ WFMService = (*WFMClient)(nil)

func NewWFMClient(base *BaseClient, baseURL string, token types.SecretString, uploader *http.Client) *WFMClient {
	if uploader == nil {
		uploader = http.DefaultClient
	}
	return &WFMClient{base: base, baseURL: baseURL, token: token, uploader: uploader}
}

func (c *WFMClient) forecastsPath(buID, weekDateID string) string {
	return fmt.Sprintf("%s/api/v2/workforcemanagement/businessunits/%s/weeks/%s/shorttermforecasts",
		c.baseURL, buID, weekDateID)
}

// GenerateInboundForecast kicks off an asynchronous inbound forecast for
// the week. The response is either complete with a forecast reference or
// processing with an operation id to await.
func (c *WFMClient) GenerateInboundForecast(ctx context.Context, buID, weekDateID, description string) (*types.InboundGenerateResponse, error) {
	body := map[string]string{"description": description}
	var out types.InboundGenerateResponse
	url := c.forecastsPath(buID, weekDateID) + "/generate?forceAsync=true"
	if err := c.doJSON(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInboundForecastData fetches the interval series of a completed
// inbound forecast.
func (c *WFMClient) GetInboundForecastData(ctx context.Context, buID, weekDateID, forecastID string) (*types.InboundForecastData, error) {
	var out types.InboundForecastData
	url := c.forecastsPath(buID, weekDateID) + "/" + forecastID + "/data"
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInboundForecast removes an inbound forecast that was generated
// only as an input and should not be retained.
func (c *WFMClient) DeleteInboundForecast(ctx context.Context, buID, weekDateID, forecastID string) error {
	url := c.forecastsPath(buID, weekDateID) + "/" + forecastID
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// CreateImportUploadURL requests a presigned destination for an import
// body of the given gzipped length.
func (c *WFMClient) CreateImportUploadURL(ctx context.Context, buID, weekDateID string, contentLength int) (*types.ImportUploadAttributes, error) {
	body := map[string]any{"contentLengthBytes": contentLength}
	var out types.ImportUploadAttributes
	url := c.forecastsPath(buID, weekDateID) + "/import/uploadurl"
	if err := c.doJSON(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImportBody PUTs the gzipped import body to the presigned URL with
// the headers the upload-url response mandated.
func (c *WFMClient) UploadImportBody(ctx context.Context, attrs *types.ImportUploadAttributes, gzipped []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, attrs.URL, bytes.NewReader(gzipped))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternal, "failed to build upload request", err)
	}
	for key, value := range attrs.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.uploader.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeExportUploadFailed, "import body upload failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.NewAppError(types.ErrCodeExportUploadFailed,
			fmt.Sprintf("import body upload returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// RunImport starts the import of a previously uploaded body.
func (c *WFMClient) RunImport(ctx context.Context, buID, weekDateID, uploadKey string) (*types.ImportResponse, error) {
	body := map[string]string{"uploadKey": uploadKey}
	var out types.ImportResponse
	url := c.forecastsPath(buID, weekDateID) + "/import"
	if err := c.doJSON(ctx, http.MethodPost, url, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON round-trips a JSON request through the BaseClient. out may be nil
// when the response body is irrelevant.
func (c *WFMClient) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternal, "failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternal, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.NewAppError(types.ErrCodeUpstreamRejected,
			fmt.Sprintf("%s %s returned status %d", method, url, resp.StatusCode), nil).
			WithDetail("body", string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamRejected, "failed to decode response body", err)
	}
	return nil
}
