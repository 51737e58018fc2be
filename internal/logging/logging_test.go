package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	require.Equal(t, zerolog.WarnLevel, setup(&buf, "WARN", false))
	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Str("tool", "sensio_get_latest").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "sensio_get_latest", line["tool"])
	require.Contains(t, line, "time")
}

func TestSetupUnknownLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	require.Equal(t, zerolog.InfoLevel, setup(&buf, "loud", false))
	require.Equal(t, zerolog.InfoLevel, setup(&buf, "", true))
}
