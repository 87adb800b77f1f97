package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingStorePutTake(t *testing.T) {
	s := NewPendingStore(time.Minute)

	reg := PendingRegistration{Name: "Foo Bar", Identity: "google:1"}
	key := s.Put(reg)
	require.NotEmpty(t, key)

	got, ok := s.Take(key)
	require.True(t, ok)
	assert.Equal(t, reg, got)

	// Consumed on take.
	_, ok = s.Take(key)
	assert.False(t, ok)
}

func TestPendingStoreUnknownKey(t *testing.T) {
	s := NewPendingStore(time.Minute)
	_, ok := s.Take("nope")
	assert.False(t, ok)
}

func TestPendingStorePeek(t *testing.T) {
	s := NewPendingStore(time.Minute)
	key := s.Put(PendingRegistration{Identity: "google:1"})

	_, ok := s.Peek(key)
	assert.True(t, ok)
	// Peek does not consume.
	_, ok = s.Take(key)
	assert.True(t, ok)
}

func TestPendingStoreExpiry(t *testing.T) {
	s := NewPendingStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	key := s.Put(PendingRegistration{Identity: "google:1"})
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Minute)
	_, ok := s.Take(key)
	assert.False(t, ok, "expired entries are dropped on access")
	assert.Equal(t, 0, s.Len())
}

func TestPendingStoreKeysAreUnique(t *testing.T) {
	s := NewPendingStore(time.Minute)
	k1 := s.Put(PendingRegistration{Identity: "google:1"})
	k2 := s.Put(PendingRegistration{Identity: "google:2"})
	assert.NotEqual(t, k1, k2)
}
