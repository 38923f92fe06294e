package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewContextWithLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithLogger(context.Background(), false, WithOutput(&buf), WithJSON(true))

	ctx = WithFields(ctx, "session_id", "s-1")
	FromCtx(ctx).Info().Msg("hello")
	FromCtx(ctx).Debug().Msg("hidden")

	// the diode writer flushes asynchronously
	time.Sleep(20 * time.Millisecond)
	flush()

	out := buf.String()
	assert.Contains(t, out, `"session_id":"s-1"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.False(t, strings.Contains(out, "hidden"))
}
