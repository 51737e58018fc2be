// Package sensio fetches raw indoor air-quality records, either from the
// vendor indoor_data API or from the database proxy function.
package sensio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/metrics"
)

const (
	SourceVendor = "vendor"
	SourceProxy  = "proxy"

	DefaultAPIURL = "https://mlv3.sensioair.com/api/indoor_data/"
	proxyFunction = "/functions/v1/fetch-sensio-air-data"
)

// StatusError is returned when the source answers with a non-2xx status.
type StatusError struct {
	Source string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Source, e.Status)
}

// Client talks to the vendor indoor_data API.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type indoorDataRequest struct {
	DeviceSerials []string `json:"device_serials"`
	Format        string   `json:"format"`
	Start         string   `json:"start,omitempty"`
	End           string   `json:"end,omitempty"`
}

// FetchIndoorData returns the records for serials, optionally bounded by
// start and end. Empty bounds are omitted from the request.
func (c *Client) FetchIndoorData(ctx context.Context, serials []string, start, end string) ([]domain.RawRecord, error) {
	body := indoorDataRequest{DeviceSerials: serials, Format: "json2", Start: start, End: end}
	headers := map[string]string{"Authorization": "Api-Key " + c.apiKey}

	var out []domain.VendorRecord
	if err := postJSON(ctx, c.http, SourceVendor, "sensio api", c.apiURL, headers, body, &out); err != nil {
		return nil, err
	}
	records := make([]domain.RawRecord, len(out))
	for i := range out {
		records[i] = &out[i]
	}
	metrics.RecordsFetched.Observe(float64(len(records)))
	return records, nil
}

// ProxyClient talks to the database proxy function, which fronts the same
// data with a different record shape.
type ProxyClient struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewProxyClient(baseURL, serviceKey string, timeout time.Duration) *ProxyClient {
	return &ProxyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: timeout},
	}
}

type proxyRequest struct {
	DeviceSerials []string `json:"deviceSerials"`
	StartDate     string   `json:"startDate,omitempty"`
	EndDate       string   `json:"endDate,omitempty"`
}

func (c *ProxyClient) FetchIndoorData(ctx context.Context, serials []string, start, end string) ([]domain.RawRecord, error) {
	body := proxyRequest{DeviceSerials: serials, StartDate: start, EndDate: end}
	headers := map[string]string{}
	if c.serviceKey != "" {
		headers["Authorization"] = "Bearer " + c.serviceKey
		headers["apikey"] = c.serviceKey
	}

	var out domain.ProxyResponse
	if err := postJSON(ctx, c.http, SourceProxy, "supabase function", c.baseURL+proxyFunction, headers, body, &out); err != nil {
		return nil, err
	}
	records := make([]domain.RawRecord, len(out.Devices))
	for i := range out.Devices {
		records[i] = &out.Devices[i]
	}
	metrics.RecordsFetched.Observe(float64(len(records)))
	return records, nil
}

func postJSON(ctx context.Context, hc *http.Client, source, name, url string, headers map[string]string, in, out any) error {
	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}()

	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("%s unreachable: %w", name, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(source, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{Source: name, Code: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}
