package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/bootstrap"
	"github.com/sensioair/sensio-mcp/internal/config"
	httpHandlers "github.com/sensioair/sensio-mcp/internal/http"
	"github.com/sensioair/sensio-mcp/internal/logging"
)

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

	app := fiber.New()
	httpHandlers.Register(app, svcs, config.UserID())

	addr := config.APIAddr()
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("server exit")
	}
}
