package waitlist

import (
	"context"
	"sync"
	"time"

	"venuebook/internal/shared/clock"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// JobProcessor expires lapsed offers proactively so queues move even when
// nobody reads them
type JobProcessor struct {
	entries Repository
	engine  *Engine
	tx      transaction.Manager
	trigger slots.PromotionTrigger
	clock   clock.Clock
	config  *JobConfig
	log     *logger.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	ExpiryCheckInterval time.Duration
	BatchSize           int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		ExpiryCheckInterval: 1 * time.Minute,
		BatchSize:           100,
	}
}

func NewJobProcessor(entries Repository, engine *Engine, tx transaction.Manager, trigger slots.PromotionTrigger, clk clock.Clock, config *JobConfig, log *logger.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	if clk == nil {
		clk = clock.System()
	}
	return &JobProcessor{
		entries: entries,
		engine:  engine,
		tx:      tx,
		trigger: trigger,
		clock:   clk,
		config:  config,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is done
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.log.InfoWithContext(ctx, "starting waitlist expiry sweep", map[string]interface{}{
		"interval": jp.config.ExpiryCheckInterval.String(),
	})

	jp.wg.Add(1)
	go func() {
		defer jp.wg.Done()
		jp.run(ctx)
	}()
}

func (jp *JobProcessor) Stop() {
	jp.stopOnce.Do(func() { close(jp.done) })
	jp.wg.Wait()
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ExpiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := jp.Sweep(ctx); err != nil {
				jp.log.ErrorWithContext(ctx, "waitlist sweep failed", err, nil)
			}
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep expires one batch of due offers and schedules promotion on every
// slot that lost an offer. It returns how many offers it expired.
func (jp *JobProcessor) Sweep(ctx context.Context) (int, error) {
	slotsToPromote := make(map[uuid.UUID]struct{})
	expired := 0

	err := jp.tx.Run(ctx, func(ctx context.Context) error {
		due, err := jp.entries.ListDueOffers(ctx, jp.clock.Now(), jp.config.BatchSize)
		if err != nil {
			return err
		}
		for _, entry := range due {
			won, err := jp.engine.Expire(ctx, entry)
			if err != nil {
				return err
			}
			if won {
				expired++
				slotsToPromote[entry.SlotID] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for slotID := range slotsToPromote {
		jp.trigger.Trigger(slotID)
	}
	if expired > 0 {
		jp.log.InfoWithContext(ctx, "expired lapsed waitlist offers", map[string]interface{}{
			"expired": expired,
			"slots":   len(slotsToPromote),
		})
	}
	return expired, nil
}
