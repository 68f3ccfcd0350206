package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusSpinner_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatusSpinnerTo(&buf)

	s.Start("waiting for block 5")
	s.Update("waiting for block 5")
	s.Update("polled height 4")
	s.Stop()
	s.Stop()

	assert.Equal(t, "waiting for block 5\npolled height 4\n", buf.String())
}
