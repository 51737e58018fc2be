package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/config"
	"github.com/sensioair/sensio-mcp/internal/logging"
	"github.com/sensioair/sensio-mcp/internal/simulator"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogPretty())

	app := fiber.New()
	simulator.Register(app, simulator.NewGenerator(time.Now().UnixNano()), config.APIKey())

	addr := config.SimulatorAddr()
	log.Info().Str("addr", addr).Msg("simulated sensio api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("simulator exit")
}
