package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/bootstrap"
	"github.com/sensioair/sensio-mcp/internal/config"
	"github.com/sensioair/sensio-mcp/internal/logging"
	"github.com/sensioair/sensio-mcp/internal/mcpserver"
)

var version = "dev"

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogPretty())
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	svcs, closeAll, err := bootstrap.Services(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer closeAll()

	if addr := config.MetricsAddr(); addr != "" {
		// stdout belongs to the protocol; keep fiber's banner off it
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
		go func() {
			if err := app.Listen(addr); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("metrics listener stopped")
			}
		}()
		log.Info().Str("addr", addr).Msg("metrics listening")
	}

	s := mcpserver.New(svcs.Dispatcher, config.UserID(), version)
	log.Info().Str("version", version).Msg("sensio tool server running on stdio")
	if err := mcpserver.Serve(s); err != nil {
		log.Error().Err(err).Msg("stdio server exit")
	}
}
