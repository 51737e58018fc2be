package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/sensioair/sensio-mcp/internal/access"
	"github.com/sensioair/sensio-mcp/internal/cache"
	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/service"
)

type stubFetcher struct {
	records []domain.RawRecord
}

func (s stubFetcher) FetchIndoorData(context.Context, []string, string, string) ([]domain.RawRecord, error) {
	return s.records, nil
}

type ownerDirectory map[string][]domain.DeviceInfo

func (d ownerDirectory) DevicesFor(_ context.Context, caller string) ([]domain.DeviceInfo, error) {
	return d[caller], nil
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	fetcher := stubFetcher{records: []domain.RawRecord{&domain.VendorRecord{
		DeviceSerial:    "SA1",
		IsDeviceOnline:  true,
		RequestDateTime: "2025-03-13T10:00:00Z",
	}}}
	dir := ownerDirectory{
		"alice":   {{DeviceSerial: "SA1", Name: "Living room"}},
		"default": {{DeviceSerial: "SA2", Name: "Office"}},
	}
	svcs := service.New(fetcher, access.NewGuard(dir),
		cache.NewManager(cache.NewMemory(time.Minute), cache.NewMemory(time.Minute)),
		service.Limits{MaxWindowDays: 30, DefaultTopK: 5, DefaultResolution: domain.Resolution15m})

	app := fiber.New()
	Register(app, svcs, "default")
	return app
}

func call(t *testing.T, app *fiber.App, caller, name, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/tools/"+name, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/json")

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	resp, err := newApp(t).Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestListTools(t *testing.T) {
	resp, err := newApp(t).Test(httptest.NewRequest(fiber.MethodGet, "/tools", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Tools []service.ToolSpec `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Tools, len(service.Catalog))
	require.Equal(t, service.ToolListDevices, out.Tools[0].Name)
}

func TestCallTool(t *testing.T) {
	app := newApp(t)

	status, out := call(t, app, "alice", service.ToolLatest, `{"device_serials": ["SA1"]}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, out["readings"], 1)

	status, out = call(t, app, "", service.ToolListDevices, "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, []any{map[string]any{"device_serial": "SA2", "name": "Office"}}, out["devices"])
}

func TestCallToolStatuses(t *testing.T) {
	app := newApp(t)

	status, out := call(t, app, "alice", service.ToolLatest, `{"device_serials": ["SA1", "SA9"]}`)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "Access denied to: SA9", out["error"])

	status, _ = call(t, app, "alice", service.ToolLatest, `{"device_serials": []}`)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, "alice", service.ToolHistory,
		`{"device_serials": ["SA1"], "start": "2025-01-01T00:00:00Z", "end": "2025-06-01T00:00:00Z"}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, out = call(t, app, "alice", "sensio_nope", `{}`)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "unknown tool: sensio_nope", out["error"])
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, fiber.StatusBadGateway, StatusFor(service.KindUpstream))
	require.Equal(t, fiber.StatusInternalServerError, StatusFor(service.Kind("mystery")))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newApp(t)
	call(t, app, "alice", service.ToolLatest, `{"device_serials": ["SA1"]}`)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "sensio_tool_calls_total")
}
