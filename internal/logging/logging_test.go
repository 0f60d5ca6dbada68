package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf, "debug")
	l.now = fixedClock

	l.Error("catalog", "Failed to load", errors.New("boom"), F("kind", "movie"), F("rows", 0))

	assert.Equal(t,
		"2024-05-01T12:00:00Z [ERROR] [catalog] Failed to load | error=boom | kind=movie | rows=0\n",
		buf.String())
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf, "warn")

	l.Debug("x", "debug")
	l.Info("x", "info")
	l.Warn("x", "warn")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("x", "ignored", errors.New("boom"))
	assert.NoError(t, l.Close())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLogger_FileRotation(t *testing.T) {
	fs := afero.NewMemMapFs()
	l, err := NewWithFs(Config{Level: "info", File: "/logs/mediamatch.log", MaxBackups: 2}, fs, nil)
	require.NoError(t, err)
	defer l.Close()
	l.maxSize = 64

	for i := 0; i < 10; i++ {
		l.Info("grouping", "classified file", F("index", i))
	}

	exists, err := afero.Exists(fs, "/logs/mediamatch.1.log")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, _ = afero.Exists(fs, "/logs/mediamatch.3.log")
	assert.False(t, exists, "backups beyond MaxBackups are removed")

	data, err := afero.ReadFile(fs, "/logs/mediamatch.1.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "classified file")
}

func TestLogger_Enabled(t *testing.T) {
	l := NewConsole(&bytes.Buffer{}, "info")
	assert.False(t, l.Enabled(LevelDebug))
	assert.True(t, l.Enabled(LevelError))

	var nilLogger *Logger
	assert.False(t, nilLogger.Enabled(LevelError))
	assert.False(t, Nop().Enabled(LevelError))
}
