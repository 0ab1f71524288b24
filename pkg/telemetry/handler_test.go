package telemetry

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetHandlerRecordsErrors(t *testing.T) {
	dir := t.TempDir()
	handler, err := NewParquetHandler(slog.NewTextHandler(io.Discard, nil), dir)
	require.NoError(t, err)

	log := slog.New(handler)
	log.Info("rosette request", "endpoint", "sentiment")
	log.Error("rosette request failed", "endpoint", "https://api.example.com/rest/v1/sentiment", "request_id", "req-1", "code", "500")
	require.NoError(t, handler.Flush())

	files, err := filepath.Glob(filepath.Join(dir, "request_errors_*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	records, err := parquet.ReadFile[LogRecord](files[0])
	require.NoError(t, err)
	require.Len(t, records, 1, "info-level records must not be persisted")

	rec := records[0]
	assert.Equal(t, "ERROR", rec.Level)
	assert.Equal(t, "rosette request failed", rec.Message)
	assert.Equal(t, "https://api.example.com/rest/v1/sentiment", rec.Endpoint)
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Contains(t, rec.Attributes, `"code":"500"`)
}

func TestParquetHandlerFlushEmpty(t *testing.T) {
	dir := t.TempDir()
	handler, err := NewParquetHandler(slog.NewTextHandler(io.Discard, nil), dir)
	require.NoError(t, err)
	require.NoError(t, handler.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "flushing an empty buffer writes nothing")
}
