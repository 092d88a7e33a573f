package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
	err     error
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.records = append(h.records, record)
	return h.err
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandlerFanOut(t *testing.T) {
	info := &recordingHandler{level: slog.LevelInfo}
	warnOnly := &recordingHandler{level: slog.LevelWarn}
	m := NewMultiHandler(info, warnOnly)

	ctx := context.Background()
	assert.True(t, m.Enabled(ctx, slog.LevelInfo))
	assert.False(t, m.Enabled(ctx, slog.LevelDebug))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "catalog reindexed", 0)
	require.NoError(t, m.Handle(ctx, record))

	assert.Len(t, info.records, 1)
	assert.Empty(t, warnOnly.records, "record below the handler's level must be skipped")
}

func TestMultiHandlerKeepsDeliveringAfterFailure(t *testing.T) {
	failing := &recordingHandler{level: slog.LevelInfo, err: errors.New("sink down")}
	healthy := &recordingHandler{level: slog.LevelInfo}
	m := NewMultiHandler(failing, healthy)

	record := slog.NewRecord(time.Now(), slog.LevelError, "order rollback", 0)
	err := m.Handle(context.Background(), record)

	assert.Error(t, err)
	assert.Len(t, healthy.records, 1, "a failing sibling must not block delivery")
}
