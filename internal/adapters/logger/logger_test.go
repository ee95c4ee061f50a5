package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func newLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newLogger(t)

	lg.Info("staging base.mason")
	lg.Warn("overlaps: /bin/x is written by a.mason, b.mason")
	lg.Error(errors.New("boom"))

	assert.Equal(t,
		"staging base.mason\n"+
			"! overlaps: /bin/x is written by a.mason, b.mason\n"+
			"✗ Error: boom\n",
		buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newLogger(t)

	sentinel := zerr.New("command failed")
	err := zerr.With(zerr.Wrap(sentinel, "install-commands exited with 2"), "element", "app.mason")
	err = zerr.Wrap(err, "element failed")
	lg.Error(err)

	assert.Equal(t,
		"✗ Error: element failed\n"+
			"  → install-commands exited with 2 (element=app.mason)\n"+
			"    → command failed\n",
		buf.String())
}

func TestLogger_ErrorJoined(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	a := zerr.With(zerr.Wrap(zerr.New("cycle detected"), "cannot build"), "element", "a.mason")
	b := errors.New("plain failure")

	got := logger.FormatError(errors.Join(a, b))
	assert.Equal(t,
		"Error: cannot build (element=a.mason)\n"+
			"  → cycle detected\n"+
			"\n"+
			"Error: plain failure",
		got)
	assert.Equal(t, []int{0, 1, 0}, logger.Depths(errors.Join(a, b)))
}

func TestLogger_ErrorMetadataOnStdError(t *testing.T) {
	t.Parallel()

	err := zerr.With(errors.New("permission denied"), "path", "/tmp/x")
	assert.Equal(t, "Error: permission denied (path=/tmp/x)", logger.FormatError(err))
}

func TestLogger_ErrorMultiline(t *testing.T) {
	t.Parallel()

	err := zerr.Wrap(errors.New("line one\nline two"), "outer")
	assert.Equal(t,
		"Error: outer\n"+
			"  → line one\n"+
			"    line two",
		logger.FormatError(err))
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newLogger(t)
	lg.SetJSON(true)

	lg.Warn("careful")
	lg.Error(zerr.With(zerr.New("bad"), "element", "x.mason"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var warn map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &warn))
	assert.Equal(t, "WARN", warn["level"])
	assert.Equal(t, "careful", warn["msg"])

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	errGroup, ok := rec["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bad", errGroup["msg"])
	assert.Equal(t, "x.mason", errGroup["element"])
}

func TestLogger_SetOutputKeepsMode(t *testing.T) {
	lg, _ := newLogger(t)
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("hello")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}
