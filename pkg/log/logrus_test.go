package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleFormatterLayout(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("debug", &buf)

	l.WithFields(map[string]interface{}{"z": 0.1, "cycle": 3}).Warnf("halt %s", "now")

	line := buf.String()
	assert.Contains(t, line, "[WAR] halt now cycle=3 z=0.1\n")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("info", &buf)

	l.Debugf("hidden")
	l.Infof("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[INF] shown")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("chatty", &buf)

	l.Debugf("hidden")
	l.Infof("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogrusLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogrusLogger("info", dir)
	require.NoError(t, err)

	l.Infof("to file")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INF] to file")
}
