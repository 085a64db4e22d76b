package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestWithContext(t *testing.T) {
	t.Run("stores and retrieves logger", func(t *testing.T) {
		log := zap.NewNop()
		ctx := WithContext(context.Background(), log)

		assert.Equal(t, log, FromContext(ctx))
	})

	t.Run("returns no-op logger for empty context", func(t *testing.T) {
		log := FromContext(context.Background())
		assert.NotNil(t, log)
	})
}

func TestWithRequestID(t *testing.T) {
	t.Run("enriches logger and context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		log := zap.New(core)

		ctx, enriched := WithRequestID(context.Background(), log, "req-123")
		enriched.Info("hello")

		assert.Equal(t, "req-123", GetRequestID(ctx))

		entries := recorded.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	})

	t.Run("missing request ID returns empty string", func(t *testing.T) {
		assert.Equal(t, "", GetRequestID(context.Background()))
	})
}

func TestWithOwnerID(t *testing.T) {
	t.Run("enriches logger and context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		log := zap.New(core)

		ctx, enriched := WithOwnerID(context.Background(), log, "owner-1")
		enriched.Info("hello")

		assert.Equal(t, "owner-1", GetOwnerID(ctx))

		entries := recorded.All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "owner-1", entries[0].ContextMap()["owner_id"])
	})
}
