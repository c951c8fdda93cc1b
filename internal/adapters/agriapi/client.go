// Package agriapi is the HTTP client for the agricultural data service that
// provides the region directory, price estimates and land optimization.
package agriapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
)

// DefaultTimeout bounds a single collaborator call.
const DefaultTimeout = 30 * time.Second

// DirectoryUnavailableError means the region list could not be fetched.
type DirectoryUnavailableError struct {
	Err error
}

func (e *DirectoryUnavailableError) Error() string {
	return "state directory unavailable: " + e.Err.Error()
}

func (e *DirectoryUnavailableError) Unwrap() error { return e.Err }

// PriceUnavailableError means no usable price was returned for a crop.
type PriceUnavailableError struct {
	Crop   string
	Region string
	Reason string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s in %s: %s", e.Crop, e.Region, e.Reason)
}

// OptimizationFailedError carries the optimizer's message verbatim.
type OptimizationFailedError struct {
	Message string
	Status  int
}

func (e *OptimizationFailedError) Error() string {
	return e.Message
}

// Directory is the response of GET /get_states.
type Directory struct {
	States           []string `json:"states"`
	UnionTerritories []string `json:"union_territories"`
}

// Price is a parsed price response.
type Price struct {
	Value   float64
	Warning string
}

// OptimizeRequest is the body of POST /optimize.
type OptimizeRequest struct {
	Land   float64  `json:"land"`
	Crops  []string `json:"crops"`
	Region string   `json:"region,omitempty"`
	// State duplicates Region for servers that read the older field name.
	State string `json:"state,omitempty"`
}

// AllocationEntry is one line of an optimize response.
type AllocationEntry struct {
	Name          string   `json:"name"`
	Area          float64  `json:"area"`
	Percent       float64  `json:"percent"`
	ForecastPrice *float64 `json:"forecast_price,omitempty"`
}

// Suggestion converts the entry for the allocator.
func (e AllocationEntry) Suggestion() allocator.Suggestion {
	return allocator.Suggestion{
		Name:     e.Name,
		Area:     e.Area,
		Percent:  e.Percent,
		Forecast: e.ForecastPrice,
	}
}

type priceRequest struct {
	Crop   string `json:"crop"`
	Region string `json:"region"`
}

type priceResponse struct {
	Price   json.RawMessage `json:"price"`
	Warning string          `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the agricultural data service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// States fetches the region directory.
func (c *Client) States(ctx context.Context) (*Directory, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/get_states", nil)
	if err != nil {
		return nil, &DirectoryUnavailableError{Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &DirectoryUnavailableError{Err: fmt.Errorf("status %d", status)}
	}

	var dir Directory
	if err := json.Unmarshal(body, &dir); err != nil {
		return nil, &DirectoryUnavailableError{Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &dir, nil
}

// Price fetches the price of crop in region. Crop and region are sent in
// lowercase.
func (c *Client) Price(ctx context.Context, crop, region string) (*Price, error) {
	unavailable := func(reason string) error {
		return &PriceUnavailableError{Crop: crop, Region: region, Reason: reason}
	}

	status, body, err := c.do(ctx, http.MethodPost, "/get_price", priceRequest{
		Crop:   strings.ToLower(strings.TrimSpace(crop)),
		Region: strings.ToLower(strings.TrimSpace(region)),
	})
	if err != nil {
		return nil, unavailable(err.Error())
	}
	if status < 200 || status > 299 {
		return nil, unavailable(fmt.Sprintf("status %d", status))
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable("failed to parse response")
	}

	var value float64
	if len(resp.Price) == 0 || json.Unmarshal(resp.Price, &value) != nil {
		return nil, unavailable("no price in response")
	}
	if !(value > 0) {
		return nil, unavailable(fmt.Sprintf("non-positive price %v", value))
	}

	return &Price{Value: value, Warning: resp.Warning}, nil
}

// Optimize asks the service to allocate land across crops.
func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) ([]AllocationEntry, error) {
	if req.State == "" {
		req.State = req.Region
	}

	status, body, err := c.do(ctx, http.MethodPost, "/optimize", req)
	if err != nil {
		return nil, &OptimizationFailedError{Message: "optimizer unreachable: " + err.Error()}
	}

	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return nil, &OptimizationFailedError{Message: errResp.Error, Status: status}
	}
	if status < 200 || status > 299 {
		return nil, &OptimizationFailedError{Message: fmt.Sprintf("optimizer returned status %d", status), Status: status}
	}

	entries, err := decodeAllocation(body)
	if err != nil {
		return nil, &OptimizationFailedError{Message: err.Error(), Status: status}
	}
	return entries, nil
}

// decodeAllocation accepts a bare array or an object with an allocation field.
func decodeAllocation(body []byte) ([]AllocationEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []AllocationEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse allocation: %w", err)
		}
		return entries, nil
	}

	var wrapped struct {
		Allocation []AllocationEntry `json:"allocation"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse allocation: %w", err)
	}
	if wrapped.Allocation == nil {
		return nil, errors.New("optimizer response has no allocation")
	}
	return wrapped.Allocation, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		requestBody, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
