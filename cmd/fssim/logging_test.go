package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTextHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	})
}

// TestSlogManager_Handle tests that records reach every enabled handler.
func TestSlogManager_Handle(t *testing.T) {
	t.Parallel()

	var debug, warn bytes.Buffer

	m := NewSlogManager()
	m.SetHandler("debug", newTextHandler(&debug, slog.LevelDebug))
	m.SetHandler("warn", newTextHandler(&warn, slog.LevelWarn))

	log := slog.New(m)
	log.Debug("mutation", "slot", 1)
	log.Warn("rejected")

	assert.Equal(t, "level=DEBUG msg=mutation slot=1\nlevel=WARN msg=rejected\n", debug.String())
	assert.Equal(t, "level=WARN msg=rejected\n", warn.String())
}

// TestSlogManager_SetHandler tests that handlers can be replaced while
// attrs bound earlier are kept.
func TestSlogManager_SetHandler(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer

	m := NewSlogManager()
	m.SetHandler("terminal", newTextHandler(&first, slog.LevelInfo))

	log := slog.New(m.WithAttrs([]slog.Attr{slog.String("disk", "d0")}))
	log.Info("mounted")

	lm, ok := log.Handler().(*SlogManager)
	assert.True(t, ok)

	lm.RemoveHandler("terminal")
	lm.SetHandler("ui", newTextHandler(&second, slog.LevelInfo))
	log.Info("unmounted")

	assert.Equal(t, "level=INFO msg=mounted disk=d0\n", first.String())
	assert.Equal(t, "level=INFO msg=unmounted disk=d0\n", second.String())
}

// TestSlogManager_Enabled tests that the manager is enabled if any handler
// is.
func TestSlogManager_Enabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	m := NewSlogManager()
	assert.False(t, m.Enabled(t.Context(), slog.LevelError))

	m.SetHandler("warn", newTextHandler(&buf, slog.LevelWarn))
	assert.False(t, m.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, m.Enabled(t.Context(), slog.LevelWarn))
}
