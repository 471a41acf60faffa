package locks

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotAcquired is returned when a slot stays locked past the configured wait.
var ErrNotAcquired = errors.New("slot lock not acquired")

// SlotLocker serializes the read-decide-write sequence on one slot.
type SlotLocker interface {
	Lock(ctx context.Context, slotID uuid.UUID) (unlock func(), err error)
}

// ChainLocker acquires every locker in order and releases them in reverse.
type ChainLocker []SlotLocker

func (c ChainLocker) Lock(ctx context.Context, slotID uuid.UUID) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, locker := range c {
		unlock, err := locker.Lock(ctx, slotID)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
