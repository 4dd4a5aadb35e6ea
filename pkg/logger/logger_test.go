package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/logger"
)

func TestNew_EscribeJSONEnArchivo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	l := logger.New(logger.Config{Env: "production", Level: "info", File: path})

	l.Debug().Msg("no debe aparecer")
	l.Info().Str("sale_id", "s-1").Msg("venta registrada")
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry), "una sola línea JSON: el debug se filtra por nivel")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "s-1", entry["sale_id"])
	assert.Equal(t, "venta registrada", entry["message"])
}

func TestNew_SinArchivoCloseEsNoop(t *testing.T) {
	l := logger.New(logger.Config{Env: "development", Level: "warn"})
	assert.NoError(t, l.Close())
}
