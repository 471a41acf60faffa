package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/transaction"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

const (
	triggerMaxAttempts = 3
	triggerBackoff     = 50 * time.Millisecond
)

// AsyncTrigger runs promotion passes in the background after a transition
// releases capacity. The caller never waits for the pass.
type AsyncTrigger struct {
	promoter *Promoter
	timeout  time.Duration
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewAsyncTrigger(promoter *Promoter, timeout time.Duration, log *logger.Logger) *AsyncTrigger {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncTrigger{promoter: promoter, timeout: timeout, log: log}
}

func (t *AsyncTrigger) Trigger(slotID uuid.UUID) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(slotID)
	}()
}

// Wait blocks until every scheduled pass has finished
func (t *AsyncTrigger) Wait() {
	t.wg.Wait()
}

func (t *AsyncTrigger) run(slotID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	for attempt := 1; attempt <= triggerMaxAttempts; attempt++ {
		_, err := t.promoter.Promote(ctx, slotID)
		if err == nil {
			return
		}

		retryable := errors.Is(err, locks.ErrNotAcquired) || transaction.IsSerializationFailure(err)
		if !retryable || attempt == triggerMaxAttempts {
			t.log.WithSlotID(slotID.String()).WithError(err).
				ErrorContext(ctx, "promotion pass failed", slog.Int("attempt", attempt))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * triggerBackoff):
		}
	}
}
