package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/hltmenu/internal/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	obs := config.DefaultObservabilityConfig()
	obs.ServiceName = "hltmenu"
	obs.Environment = "production"

	var buf bytes.Buffer
	log := NewWithWriter(obs, &buf)
	log.Info().Str("label", "hltEle26WP70GsfTrackIsoUnseededFilter").Msg("module stored")
	log.Debug().Msg("dropped below info")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "module stored", line["message"])
	assert.Equal(t, "hltmenu", line["service"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, "hltEle26WP70GsfTrackIsoUnseededFilter", line["label"])
}

func TestNewWithWriterConsoleInDevelopment(t *testing.T) {
	obs := config.DefaultObservabilityConfig()
	obs.Environment = "development"

	var buf bytes.Buffer
	log := NewWithWriter(obs, &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
