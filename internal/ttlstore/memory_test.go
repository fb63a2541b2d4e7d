// ABOUTME: Tests for the in-memory TTL store.
// ABOUTME: Validates TTL expiry, Put re-arming the window, deletion, and concurrency safety.

package ttlstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, ok, err := s.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("value"), time.Minute))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), 20*time.Millisecond))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "key should be absent after its TTL window elapses")
}

func TestMemoryStore_PutRearmsTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v1"), 50*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	// Re-put resets the window, so the key survives past the original expiry.
	require.NoError(t, s.Put(ctx, "k", []byte("v2"), 50*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestMemoryStore_ValueIsolation(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	original := []byte("immutable")
	require.NoError(t, s.Put(ctx, "k", original, time.Minute))

	// Mutating the caller's slice must not affect the stored copy.
	original[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("immutable"), got)

	// Mutating a returned slice must not affect later reads.
	got[0] = 'Y'
	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	// Close twice is safe.
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.Put(ctx, "k", nil, time.Minute), ErrClosed)
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStore_Concurrency(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Put(ctx, "shared", []byte("v"), time.Minute)
				_, _, _ = s.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	_, ok, err := s.Get(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_RunSweepRemovesExpired(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "short", []byte("v"), 10*time.Millisecond))
	require.NoError(t, s.Put(ctx, "long", []byte("v"), time.Minute))
	time.Sleep(20 * time.Millisecond)

	s.runSweep()
	assert.Equal(t, 1, s.Len())
}

func TestPutGetJSON(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, PutJSON(ctx, s, "rec", record{Name: "vienna", Count: 3}, time.Minute))

	var got record
	ok, err := GetJSON(ctx, s, "rec", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record{Name: "vienna", Count: 3}, got)

	ok, err = GetJSON(ctx, s, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
