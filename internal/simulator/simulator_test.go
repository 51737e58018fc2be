package simulator

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/require"

	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/normalize"
	"github.com/sensioair/sensio-mcp/internal/sensio"
)

func fixedGenerator() *Generator {
	g := NewGenerator(42)
	g.now = func() time.Time { return time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestTimes(t *testing.T) {
	g := fixedGenerator()

	require.Equal(t, []time.Time{time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC)}, g.Times("", ""))

	ts := g.Times("2025-03-13T10:02:00Z", "2025-03-13T10:30:00Z")
	require.Len(t, ts, 6)
	require.Equal(t, time.Date(2025, 3, 13, 10, 5, 0, 0, time.UTC), ts[0])
	require.Equal(t, time.Date(2025, 3, 13, 10, 30, 0, 0, time.UTC), ts[5])

	require.Len(t, g.Times("2025-01-01T00:00:00Z", "2025-03-01T00:00:00Z"), maxPerDevice)
}

func TestVendorAndProxyShapesAgree(t *testing.T) {
	g := fixedGenerator()
	times := g.Times("2025-03-13T10:00:00Z", "2025-03-13T10:10:00Z")

	v := NewGenerator(7).Vendor([]string{"SA1"}, times)
	p := NewGenerator(7).Proxy([]string{"SA1"}, times)
	require.Len(t, v, 3)
	require.Len(t, p, 3)
	for i := range v {
		require.Equal(t, normalize.Normalize(&v[i]).Sensor, normalize.Normalize(&p[i]).Sensor)
		require.Equal(t, normalize.ToPoint(&v[i]), normalize.ToPoint(&p[i]))
	}
}

func TestServesVendorClient(t *testing.T) {
	app := fiber.New()
	Register(app, fixedGenerator(), "secret")
	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	client := sensio.NewClient(srv.URL+indoorPath, "secret", 5*time.Second)
	recs, err := client.FetchIndoorData(context.Background(), []string{"SA1", "SA2"},
		"2025-03-13T10:00:00Z", "2025-03-13T11:00:00Z")
	require.NoError(t, err)
	require.Len(t, recs, 26)
	require.Equal(t, "SA2", recs[25].Serial())

	tree, ok := normalize.Classes(recs[0])
	require.True(t, ok)
	require.False(t, tree.Empty())

	bad := sensio.NewClient(srv.URL+indoorPath, "wrong", 5*time.Second)
	_, err = bad.FetchIndoorData(context.Background(), []string{"SA1"}, "", "")
	require.ErrorContains(t, err, "401")
}

func TestServesProxyClient(t *testing.T) {
	app := fiber.New()
	Register(app, fixedGenerator(), "")
	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	client := sensio.NewProxyClient(srv.URL, "", 5*time.Second)
	recs, err := client.FetchIndoorData(context.Background(), []string{"SA1"}, "", "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, ok := recs[0].(*domain.ProxyRecord)
	require.True(t, ok)
}

func TestRejectsMissingSerials(t *testing.T) {
	app := fiber.New()
	Register(app, fixedGenerator(), "")

	req := httptest.NewRequest(fiber.MethodPost, indoorPath, strings.NewReader(`{"format": "json2"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Api-Key any")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
