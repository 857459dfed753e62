package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-workspace-auth/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("PROD", &buf)

	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Debug().Msg("hidden")
	logger.Info().Str("reason", "invalid_code").Msg("callback failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "callback failed", entry["message"])
	require.Equal(t, "invalid_code", entry["reason"])
}

func TestNew_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("DEV", &buf)

	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger.Debug().Msg("visible")
	require.Contains(t, buf.String(), "visible")
}
