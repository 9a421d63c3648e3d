package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok = s.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.clock = func() time.Time { return now }
	s.Set(ctx, "k", []byte("v"), 50*time.Millisecond)

	now = now.Add(100 * time.Millisecond)
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok, "expired entry must read as absent")
	assert.Equal(t, 0, s.Len(), "expired entry must be removed, not just hidden")

	// A second read stays absent.
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("old"), time.Minute)
	s.Set(ctx, "k", []byte("new"), time.Minute)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Set(ctx, "b", []byte("2"), time.Minute)
	assert.Equal(t, 2, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestKeyDeterministic(t *testing.T) {
	type params struct {
		SubjectID string
		TargetID  string
	}

	a := Key("alignment", params{"cand-1", "role-1"})
	b := Key("alignment", params{"cand-1", "role-1"})
	c := Key("alignment", params{"cand-2", "role-1"})
	d := Key("skills_gap", params{"cand-1", "role-1"})

	assert.Equal(t, a, b, "identical calls must hit the same entry")
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d, "same params under a different dependency must not collide")
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := zaptest.NewLogger(t)

	s, err := NewRedisStore(mr.Addr(), logger)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	s.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	// TTL expiry through Redis key expiry.
	mr.FastForward(2 * time.Minute)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok)

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Set(ctx, "b", []byte("2"), time.Minute)
	assert.Equal(t, 2, s.Clear(ctx))
	_, ok = s.Get(ctx, "a")
	assert.False(t, ok)
}
