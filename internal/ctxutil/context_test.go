package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()

	_, ok := GetRequestID(ctx)
	assert.False(t, ok)

	ctx = WithRequestID(ctx, "req-123")
	got, ok := GetRequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-123", got)
}

func TestUserID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetUserID(ctx))

	ctx = WithUserID(ctx, "U123")
	assert.Equal(t, "U123", GetUserID(ctx))

	assert.Empty(t, GetUserID(WithUserID(context.Background(), "")))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, ChannelWeb, GetChannel(context.Background()))
	assert.Equal(t, ChannelLine, GetChannel(WithChannel(context.Background(), ChannelLine)))
}

func TestPreserveTracing(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	parent = WithRequestID(parent, "req-1")
	parent = WithUserID(parent, "U1")
	parent = WithChannel(parent, ChannelLine)
	cancel()

	detached := PreserveTracing(parent)

	assert.NoError(t, detached.Err(), "detached context must not inherit cancellation")
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)

	requestID, ok := GetRequestID(detached)
	assert.True(t, ok)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "U1", GetUserID(detached))
	assert.Equal(t, ChannelLine, GetChannel(detached))
}

func TestPreserveTracing_Empty(t *testing.T) {
	detached := PreserveTracing(context.Background())

	_, ok := GetRequestID(detached)
	assert.False(t, ok)
	assert.Empty(t, GetUserID(detached))
}
