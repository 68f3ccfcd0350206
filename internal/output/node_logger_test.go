package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeLogger_DropsUntilInit(t *testing.T) {
	var buf bytes.Buffer
	l := NewNodeLogger(&buf)

	l.Info("before init")
	assert.Empty(t, buf.String())

	require.NoError(t, l.Init("info", "TEST-testnet-relay"))
	l.Info("after init")

	assert.Contains(t, buf.String(), "after init")
	assert.Contains(t, buf.String(), "TEST-testnet-relay")
	assert.Equal(t, "TEST-testnet-relay", l.Label())
}

func TestNodeLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewNodeLogger(&buf)
	require.NoError(t, l.Init("debug", "TEST-testnet-relay"))

	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	require.NoError(t, l.SetLevel("error"))
	assert.Equal(t, "error", l.Level())

	buf.Reset()
	l.Info("muted")
	assert.Empty(t, buf.String())

	l.Error("still shown")
	assert.Contains(t, buf.String(), "still shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "info"},
		{in: "debug", want: "debug"},
		{in: "ERROR", want: "error"},
		{in: "warn", want: "warn"},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl.String())
		})
	}

	l := NewNodeLogger(nil)
	require.Error(t, l.Init("loud", "x"))
}
