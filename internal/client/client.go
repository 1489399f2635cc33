package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	headerUserID = "X-User-Id"

	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
)

// APIError non-2xx response from hydroponic-data.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hydroponic-data: %s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports a 404 (missing or foreign system).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Options tunes the underlying resty client.
type Options struct {
	Timeout    time.Duration // default 30s
	RetryCount int           // GET requests only; writes are sent once
}

// Client hydroponic-data HTTP API client, acting as a single identity.
type Client struct {
	reads  *resty.Client
	writes *resty.Client
	logger *zap.Logger
}

func New(baseURL string, identity domain.Identity, opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	newResty := func(retryCount int) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(opts.Timeout).
			SetRetryCount(retryCount).
			SetRetryWaitTime(retryWaitTime).
			SetRetryMaxWaitTime(retryMaxWaitTime).
			SetHeader("Accept", "application/json").
			SetHeader(headerUserID, string(identity))
	}

	// Writes are sent once, even after a timeout.
	return &Client{
		reads:  newResty(opts.RetryCount),
		writes: newResty(0),
		logger: logger,
	}
}

func (c *Client) clientFor(method string) *resty.Client {
	if method == http.MethodGet {
		return c.reads
	}
	return c.writes
}

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// System as returned by the API.
type System struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Location  *string `json:"location"`
	CreatedAt string  `json:"created_at"`
	Owner     string  `json:"owner"`
}

// Measurement list/event shape; Timestamp is RFC 3339.
type Measurement struct {
	ID          int64   `json:"id"`
	SystemID    string  `json:"system_id"`
	Timestamp   string  `json:"timestamp"`
	PH          float64 `json:"ph"`
	Temperature float64 `json:"temperature"`
	TDS         float64 `json:"tds"`
}

// MeasurementPage read-path response.
type MeasurementPage struct {
	System      System         `json:"system"`
	Items       []Measurement  `json:"items"`
	Columns     []string       `json:"columns"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"total_pages"`
	HasPrevious bool           `json:"has_previous"`
	HasNext     bool           `json:"has_next"`
	Filters     map[string]any `json:"filters"`
}

// IngestedMeasurement ingest response row; Timestamp is "YYYY-MM-DD HH:MM".
type IngestedMeasurement struct {
	ID          int64   `json:"id"`
	Timestamp   string  `json:"timestamp"`
	PH          float64 `json:"ph"`
	Temperature float64 `json:"temperature"`
	TDS         float64 `json:"tds"`
}

func (c *Client) ListSystems(ctx context.Context) ([]System, error) {
	var out struct {
		Items []System `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/systems", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateSystem(ctx context.Context, name, location string) (*System, error) {
	var out System
	body := map[string]string{"name": name, "location": location}
	if err := c.do(ctx, http.MethodPost, "/api/v1/systems", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSystem(ctx context.Context, systemID string) (*System, error) {
	var out System
	if err := c.do(ctx, http.MethodGet, "/api/v1/systems/"+url.PathEscape(systemID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSystem(ctx context.Context, systemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/systems/"+url.PathEscape(systemID), nil, nil, nil)
}

// QueryMeasurements params are the read-path query parameters (start_date, page, ...).
func (c *Client) QueryMeasurements(ctx context.Context, systemID string, params url.Values) (*MeasurementPage, error) {
	var out MeasurementPage
	path := "/api/v1/systems/" + url.PathEscape(systemID) + "/measurements"
	if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IngestReadings(ctx context.Context, systemID string, readings []domain.Readings) ([]IngestedMeasurement, error) {
	var out struct {
		Measurements []IngestedMeasurement `json:"measurements"`
	}
	path := "/api/v1/systems/" + url.PathEscape(systemID) + "/measurements"
	if err := c.do(ctx, http.MethodPost, path, nil, readings, &out); err != nil {
		return nil, err
	}
	return out.Measurements, nil
}

// ExportMeasurements returns the XLSX bytes.
func (c *Client) ExportMeasurements(ctx context.Context, systemID string, params url.Values) ([]byte, error) {
	path := "/api/v1/systems/" + url.PathEscape(systemID) + "/measurements/export"
	resp, err := c.reads.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to call hydroponic-data: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return resp.Body(), nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	req := c.clientFor(method).R().SetContext(ctx)
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("hydroponic-data call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call hydroponic-data: %w", err)
	}
	if resp.IsError() {
		return decodeError(resp)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

func decodeError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
	}
	return apiErr
}
