package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, closeLog, err := New(Options{Level: "info", Output: &buf})
	require.NoError(t, err)
	defer closeLog()

	log.Debug("hidden")
	log.Errorf("Error getting TTL values: %s", "boom")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "Error getting TTL values: boom")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, closeLog, err := New(Options{Level: "debug", JSON: true, Output: &buf})
	require.NoError(t, err)
	defer closeLog()

	log.Infow("Change TTL Plugin loaded", "backend", "memory")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Change TTL Plugin loaded", entry["msg"])
	assert.Equal(t, "memory", entry["backend"])
}

func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "ttlctl.log")

	log, closeLog, err := New(Options{Level: "error", Output: &buf, File: path})
	require.NoError(t, err)

	log.Debug("file only")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
	assert.Empty(t, buf.String())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_CloseWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	log, closeLog, err := New(Options{Output: &buf})
	require.NoError(t, err)

	log.Info("flushed")
	assert.NoError(t, closeLog())
	assert.Contains(t, buf.String(), "flushed")
}

func TestNew_FileClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttlctl.log")
	_, closeLog, err := New(Options{Output: &bytes.Buffer{}, File: path})
	require.NoError(t, err)

	require.NoError(t, closeLog())
	assert.ErrorIs(t, closeLog(), os.ErrClosed)
}
