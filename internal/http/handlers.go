package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sensioair/sensio-mcp/internal/service"
)

// CallerHeader carries the caller identity checked against the device
// directory.
const CallerHeader = "X-Caller-ID"

var statusByKind = map[service.Kind]int{
	service.KindOK:           fiber.StatusOK,
	service.KindValidation:   fiber.StatusBadRequest,
	service.KindAccessDenied: fiber.StatusForbidden,
	service.KindOutOfRange:   fiber.StatusUnprocessableEntity,
	service.KindUpstream:     fiber.StatusBadGateway,
	service.KindUnknownTool:  fiber.StatusNotFound,
	service.KindInternal:     fiber.StatusInternalServerError,
}

// StatusFor maps an envelope kind to the HTTP status it is served with.
func StatusFor(kind service.Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// Register mounts the tool surface. Calls without a caller header run as
// defaultCaller.
func Register(app *fiber.App, svcs *service.Services, defaultCaller string) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	g := app.Group("/tools")
	g.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tools": service.Catalog})
	})
	g.Post("/:name", func(c *fiber.Ctx) error {
		caller := c.Get(CallerHeader)
		if caller == "" {
			caller = defaultCaller
		}
		var args json.RawMessage
		if body := c.Body(); len(body) > 0 {
			args = append(json.RawMessage(nil), body...)
		}

		env := svcs.Dispatcher.Call(c.UserContext(), caller, c.Params("name"), args)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Status(StatusFor(env.Kind)).Send(env.Body)
	})
}
