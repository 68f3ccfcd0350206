package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewLoggerWithWriters(&out, &errOut), &out, &errOut
}

func TestLogger_Levels(t *testing.T) {
	l, out, errOut := newBufferedLogger()

	l.Info("hello %s", "world")
	l.Success("done")
	l.Warn("careful")
	l.Error("broken: %d", 42)

	assert.Contains(t, out.String(), "hello world\n")
	assert.Contains(t, out.String(), "✓ done\n")
	assert.Contains(t, errOut.String(), "Warning: careful\n")
	assert.Contains(t, errOut.String(), "Error: broken: 42\n")
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	l, out, _ := newBufferedLogger()

	l.SetVerbose(false)
	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.SetVerbose(true)
	l.Debug("shown")
	assert.Equal(t, "[DEBUG] shown\n", out.String())
}

func TestLogger_JSONModeSuppressesText(t *testing.T) {
	l, out, errOut := newBufferedLogger()
	l.SetJSONMode(true)

	l.Info("a")
	l.Error("b")
	l.Cyan("c")
	l.PrintFatal("d", errors.New("e"))

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestLogger_PrintRequestError(t *testing.T) {
	t.Run("connection refused prints nethash", func(t *testing.T) {
		l, _, errOut := newBufferedLogger()
		l.PrintRequestError(&RequestErrorInfo{
			Verb:              "GET",
			URL:               "http://localhost:4003/api/blocks/getHeight",
			Nethash:           "abc123",
			ConnectionRefused: true,
			Error:             errors.New("dial tcp: connect: connection refused"),
		})

		assert.Contains(t, errOut.String(), "> ERROR: dial tcp: connect: connection refused")
		assert.Contains(t, errOut.String(), "> nethash: abc123")
	})

	t.Run("status failure prints status", func(t *testing.T) {
		l, _, errOut := newBufferedLogger()
		l.PrintRequestError(&RequestErrorInfo{
			Verb:   "POST",
			URL:    "http://localhost:4003/api/transactions",
			Status: 500,
			Error:  errors.New("bad response"),
		})

		assert.Contains(t, errOut.String(), "> ERROR: POST http://localhost:4003/api/transactions")
		assert.Contains(t, errOut.String(), "> status: 500")
		assert.NotContains(t, errOut.String(), "nethash")
	})

	t.Run("nil info is ignored", func(t *testing.T) {
		l, _, errOut := newBufferedLogger()
		l.PrintRequestError(nil)
		assert.Empty(t, errOut.String())
	})
}

func TestIsSilent(t *testing.T) {
	t.Setenv(EnvSilent, "true")
	require.True(t, IsSilent())

	t.Setenv(EnvSilent, "")
	require.False(t, IsSilent())
}

func TestLogger_PrintFatal(t *testing.T) {
	l, _, errOut := newBufferedLogger()
	l.PrintFatal("relay storage", errors.New("disk full"))

	assert.Equal(t, Separator()+"\nFATAL ERROR: relay storage\n  disk full\n"+Separator()+"\n", errOut.String())
}
