package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liverelay/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json_output_with_attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "relay")),
		)
		log.Info("hello", logger.Component("test"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "relay", rec["service"])
		assert.Equal(t, "test", rec["component"])
	})

	t.Run("level_filters_records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevelString("warn"))
		log.Info("dropped")
		log.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown_level_keeps_default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevelString("loud"))
		log.Debug("hidden")
		log.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("development_logs_debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("relay"), logger.WithOutput(&buf))
		log.Debug("verbose")

		assert.Contains(t, buf.String(), "verbose")
		assert.Contains(t, buf.String(), "env=development")
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With(logger.Component("router")).InfoContext(ctx, "routed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "router", rec["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	rec = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	_, ok := rec["request_id"]
	assert.False(t, ok)
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	t.Run("nil_safe_helpers", func(t *testing.T) {
		t.Parallel()

		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
		assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
		assert.True(t, logger.SessionID("").Equal(slog.Attr{}))
		assert.True(t, logger.Upstream("").Equal(slog.Attr{}))
		assert.True(t, logger.CloseReason("").Equal(slog.Attr{}))
		assert.True(t, logger.Query("").Equal(slog.Attr{}))
	})

	t.Run("error_attr", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")
		attr := logger.Error(err)
		require.Equal(t, "error", attr.Key)
		assert.Equal(t, err, attr.Value.Any())
	})

	t.Run("group_attr", func(t *testing.T) {
		t.Parallel()

		attr := logger.Group("close", logger.CloseCode(1011), logger.CloseReason("internal"))
		require.Equal(t, slog.KindGroup, attr.Value.Kind())
		g := attr.Value.Group()
		require.Len(t, g, 2)
		assert.Equal(t, "close_code", g[0].Key)
		assert.Equal(t, int64(1011), g[0].Value.Int64())
		assert.Equal(t, "internal", g[1].Value.String())
	})
}
