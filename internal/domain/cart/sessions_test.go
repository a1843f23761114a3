package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acquire(t *testing.T, sessions *Sessions, sessionID string) (*Engine, func()) {
	t.Helper()
	engine, release, err := sessions.Acquire(context.Background(), sessionID)
	require.NoError(t, err)
	return engine, release
}

// ============================================
// Acquire Tests
// ============================================

func TestSessions_EngineIsReusedPerSession(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 8, nil)
	require.NoError(t, err)

	a1, release1 := acquire(t, sessions, "a")
	defer release1()
	a2, release2 := acquire(t, sessions, "a")
	defer release2()
	b, releaseB := acquire(t, sessions, "b")
	defer releaseB()

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, sessions.Len())
}

func TestSessions_RequiresSessionID(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 8, nil)
	require.NoError(t, err)

	_, _, err = sessions.Acquire(context.Background(), "")

	assert.ErrorIs(t, err, ErrSessionRequired)
}

func TestSessions_IsolatesCarts(t *testing.T) {
	storage := newFakeStorage()
	sessions, err := NewSessions(storage, 8, nil)
	require.NoError(t, err)
	ctx := context.Background()

	a, releaseA := acquire(t, sessions, "a")
	defer releaseA()
	b, releaseB := acquire(t, sessions, "b")
	defer releaseB()
	_, err = a.AddItem(ctx, burger)
	require.NoError(t, err)

	result, err := b.AddItem(ctx, pizza)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAdded, result.Outcome)
	assert.Contains(t, storage.data, "session:a:"+StorageKey)
	assert.Contains(t, storage.data, "session:b:"+StorageKey)
}

func TestSessions_ReleaseIsIdempotent(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 1, nil)
	require.NoError(t, err)

	first, release := acquire(t, sessions, "a")
	release()
	release()
	second, releaseAgain := acquire(t, sessions, "a")
	defer releaseAgain()

	assert.Same(t, first, second)
	assert.Equal(t, 1, sessions.Len())
}

// ============================================
// Eviction Tests
// ============================================

func TestSessions_EvictedSessionRehydrates(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 1, nil)
	require.NoError(t, err)
	ctx := context.Background()

	a, releaseA := acquire(t, sessions, "a")
	_, err = a.AddItem(ctx, burger, WithQuantity(2))
	require.NoError(t, err)
	releaseA()
	_, releaseB := acquire(t, sessions, "b")
	releaseB()

	again, releaseAgain := acquire(t, sessions, "a")
	defer releaseAgain()

	assert.NotSame(t, a, again)
	require.Len(t, again.State().Lines, 1)
	assert.Equal(t, 2, again.State().Lines[0].Quantity)
}

func TestSessions_HeldEngineSurvivesEviction(t *testing.T) {
	storage := newFakeStorage()
	sessions, err := NewSessions(storage, 1, nil)
	require.NoError(t, err)
	ctx := context.Background()

	a, releaseA := acquire(t, sessions, "a")
	_, releaseB := acquire(t, sessions, "b")
	a2, releaseA2 := acquire(t, sessions, "a")

	require.Same(t, a, a2)

	_, err = a.AddItem(ctx, burger)
	require.NoError(t, err)
	_, err = a2.AddItem(ctx, fries)
	require.NoError(t, err)

	assert.Len(t, a.State().Lines, 2)
	reloaded := NewEngine(ctx, ScopedStorage(storage, "a"))
	assert.Len(t, reloaded.State().Lines, 2)

	releaseA()
	releaseA2()
	releaseB()
}

func TestSessions_ReleasedEnginesShrinkToCacheSize(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 1, nil)
	require.NoError(t, err)

	_, releaseA := acquire(t, sessions, "a")
	_, releaseB := acquire(t, sessions, "b")
	assert.Equal(t, 2, sessions.Len())

	releaseA()
	releaseB()

	assert.Equal(t, 1, sessions.Len())
}

func TestSessions_Forget(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 8, nil)
	require.NoError(t, err)

	first, release := acquire(t, sessions, "a")
	release()
	sessions.Forget("a")
	second, releaseSecond := acquire(t, sessions, "a")
	defer releaseSecond()

	assert.NotSame(t, first, second)
}

func TestSessions_ForgetWhileHeld(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 8, nil)
	require.NoError(t, err)

	first, releaseFirst := acquire(t, sessions, "a")
	sessions.Forget("a")
	second, releaseSecond := acquire(t, sessions, "a")

	assert.Same(t, first, second)

	releaseFirst()
	releaseSecond()
	sessions.Forget("a")
	assert.Equal(t, 0, sessions.Len())
}

// ============================================
// Concurrency Tests
// ============================================

func TestSessions_ConcurrentFirstUse(t *testing.T) {
	sessions, err := NewSessions(newFakeStorage(), 8, nil)
	require.NoError(t, err)
	ctx := context.Background()

	engines := make([]*Engine, 20)
	var wg sync.WaitGroup
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine, release, err := sessions.Acquire(ctx, "shared")
			if err != nil {
				return
			}
			defer release()
			engines[i] = engine
		}(i)
	}
	wg.Wait()

	require.NotNil(t, engines[0])
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
}

func TestSessions_ConcurrentAddsUnderEviction(t *testing.T) {
	storage := newFakeStorage()
	sessions, err := NewSessions(storage, 1, nil)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			engine, release, err := sessions.Acquire(ctx, "a")
			if err != nil {
				return
			}
			defer release()
			_, _ = engine.AddItem(ctx, burger)
		}()
		go func() {
			defer wg.Done()
			_, release, err := sessions.Acquire(ctx, "other")
			if err != nil {
				return
			}
			release()
		}()
	}
	wg.Wait()

	reloaded := NewEngine(ctx, ScopedStorage(storage, "a"))
	require.Len(t, reloaded.State().Lines, 1)
	assert.Equal(t, 10, reloaded.State().Lines[0].Quantity)
}

func TestNewSessions_InvalidSize(t *testing.T) {
	_, err := NewSessions(newFakeStorage(), 0, nil)

	assert.Error(t, err)
}
