package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &ZapLogger{z: zap.New(core).Sugar()}, logs
}

func TestFromContextReturnsNopWhenUnset(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
	// Must not panic.
	l.Infow("ignored", "k", "v")
}

func TestWithAttachesLogger(t *testing.T) {
	l, logs := newObservedLogger()
	ctx := With(context.Background(), l)

	Infow(ctx, "hello", "user", "bob")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "bob", entries[0].ContextMap()["user"])
}

func TestTrackPersistsFields(t *testing.T) {
	l, logs := newObservedLogger()
	ctx := With(context.Background(), l)

	Track(ctx, "provider", "google")
	Info(ctx, "login attempt")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "google", entries[0].ContextMap()["provider"])
}

func TestTrackWithoutScopeIsNoop(t *testing.T) {
	// Should neither panic nor attach anything.
	Track(context.Background(), "k", "v")
}
