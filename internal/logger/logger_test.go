package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler(t *testing.T) {
	t.Run("production writes json at info", func(t *testing.T) {
		var buf bytes.Buffer
		h := consoleHandler(&buf, false)

		assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
		slog.New(h).Info("rating added", "rating_id", "r1")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "rating added", record["msg"])
		assert.Equal(t, "r1", record["rating_id"])
	})

	t.Run("development writes text at debug", func(t *testing.T) {
		var buf bytes.Buffer
		h := consoleHandler(&buf, true)

		assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
		slog.New(h).Debug("slot issued", "key", "sneakers/1")
		assert.Contains(t, buf.String(), "key=sneakers/1")
	})
}

func TestCombineFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := combine([]slog.Handler{consoleHandler(&a, false), consoleHandler(&b, false)})

	slog.New(h).Error("upload failed")
	assert.Contains(t, a.String(), "upload failed")
	assert.Contains(t, b.String(), "upload failed")
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Init(true, "")
	assert.NotSame(t, prev, slog.Default())
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
