package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesOneSlot(t *testing.T) {
	locker := NewLocalLocker(0)
	slotID := uuid.New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), slotID)
			require.NoError(t, err)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.size())
}

func TestLocalLocker_DifferentSlotsDoNotBlock(t *testing.T) {
	locker := NewLocalLocker(50 * time.Millisecond)

	unlockA, err := locker.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_TimesOut(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	slotID := uuid.New()

	unlock, err := locker.Lock(context.Background(), slotID)
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), slotID)
	assert.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	assert.Equal(t, 0, locker.size())
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker(0)
	slotID := uuid.New()

	unlock, err := locker.Lock(context.Background(), slotID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, slotID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLocker_UnlockIsIdempotent(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	slotID := uuid.New()

	unlock, err := locker.Lock(context.Background(), slotID)
	require.NoError(t, err)
	unlock()
	unlock()

	again, err := locker.Lock(context.Background(), slotID)
	require.NoError(t, err)
	again()
}

type recordingLocker struct {
	name string
	log  *[]string
	err  error
}

func (r recordingLocker) Lock(ctx context.Context, slotID uuid.UUID) (func(), error) {
	if r.err != nil {
		return nil, r.err
	}
	*r.log = append(*r.log, "lock "+r.name)
	return func() { *r.log = append(*r.log, "unlock "+r.name) }, nil
}

func TestChainLocker(t *testing.T) {
	t.Run("releases in reverse order", func(t *testing.T) {
		var log []string
		chain := ChainLocker{recordingLocker{name: "a", log: &log}, recordingLocker{name: "b", log: &log}}

		unlock, err := chain.Lock(context.Background(), uuid.New())
		require.NoError(t, err)
		unlock()

		assert.Equal(t, []string{"lock a", "lock b", "unlock b", "unlock a"}, log)
	})

	t.Run("releases acquired locks when a later one fails", func(t *testing.T) {
		var log []string
		chain := ChainLocker{recordingLocker{name: "a", log: &log}, recordingLocker{name: "b", log: &log, err: ErrNotAcquired}}

		_, err := chain.Lock(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrNotAcquired)
		assert.Equal(t, []string{"lock a", "unlock a"}, log)
	})
}
