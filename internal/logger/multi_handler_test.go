package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ err error }

func (h failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

// recordingHandler collects messages; safe for use from the async worker.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
	delay    time.Duration
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func TestNewMultiHandler_NilFiltering(t *testing.T) {
	mh := NewMultiHandler(nil, slog.NewJSONHandler(&bytes.Buffer{}, nil), nil)
	assert.Len(t, mh.handlers, 1)
}

func TestMultiHandler_FanOut(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	mh := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(mh).With("service", "mapgpt")

	assert.True(t, mh.Enabled(context.Background(), slog.LevelDebug))

	log.Info("info only")
	log.Error("both")

	assert.Equal(t, 2, strings.Count(debugBuf.String(), "\n"))
	assert.Equal(t, 1, strings.Count(errorBuf.String(), "\n"))
	assert.Contains(t, errorBuf.String(), `"service":"mapgpt"`)
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	mh := NewMultiHandler(failingHandler{errA}, failingHandler{errB})

	err := mh.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestAsyncHandler_ShutdownFlushes(t *testing.T) {
	rec := &recordingHandler{}
	async := NewAsyncHandler(rec, AsyncOptions{BufferSize: 16})
	log := slog.New(async)

	for i := 0; i < 10; i++ {
		log.Info("line")
	}
	require.NoError(t, async.Shutdown(context.Background()))
	assert.Equal(t, 10, rec.count())

	// Records after shutdown are ignored, and a second shutdown is a no-op.
	log.Info("late")
	assert.NoError(t, async.Shutdown(context.Background()))
	assert.Equal(t, 10, rec.count())
}

func TestAsyncHandler_DropsWhenFull(t *testing.T) {
	rec := &recordingHandler{delay: 20 * time.Millisecond}
	async := NewAsyncHandler(rec, AsyncOptions{BufferSize: 1})
	log := slog.New(async)

	for i := 0; i < 20; i++ {
		log.Info("burst")
	}
	assert.Positive(t, async.Dropped())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, async.Shutdown(ctx))
	assert.Equal(t, uint64(20), uint64(rec.count())+async.Dropped())
}
