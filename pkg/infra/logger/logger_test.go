package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	l, closer, err := NewLogger(Config{Level: "debug"})
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l, closer, err = NewLogger(Config{Level: "chatty"})
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewLogger_RejectsPathsOutsideLogs(t *testing.T) {
	_, _, err := NewLogger(Config{File: "../escape.log"})
	assert.Error(t, err)
}

func TestAsyncFileWriter_FlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := NewAsyncFileWriter(path, 1024)
	require.NoError(t, err)

	n, err := w.Write([]byte("line one\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	_, _ = w.Write([]byte("line two\n"))
	w.Close()
	w.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestAsyncConsoleHook_WritesEntries(t *testing.T) {
	var buf bytes.Buffer
	hook := NewAsyncConsoleHook(&buf, 10)

	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	l.AddHook(hook)
	l.WithField("score", 60).Warn("input blocked")
	hook.Close()

	assert.True(t, strings.Contains(buf.String(), "input blocked"))
	assert.True(t, strings.Contains(buf.String(), "score=60"))
}
