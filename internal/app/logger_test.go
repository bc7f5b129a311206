package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &Config{AppEnv: "staging", LogFormat: "JSON", LogLevel: "warn"})

	logger.Info("dropped")
	logger.Warn("kept", "user_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "staging", line["env"])
	assert.EqualValues(t, 7, line["user_id"])
}

func TestNewLoggerToTextDefaults(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, nil).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "env=development")
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}
