package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "warn", Out: &buf}).Component("status_sweep")

	log.Info().Msg("descartado por nivel")
	assert.Zero(t, buf.Len())

	log.Warn().Str("product_id", "p-1").Msg("fila omitida")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "status_sweep", line["component"])
	assert.Equal(t, "p-1", line["product_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestParseLevel_PorDefectoInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("verbose").String())
	assert.Equal(t, "debug", parseLevel("debug").String())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("nada") })
}
