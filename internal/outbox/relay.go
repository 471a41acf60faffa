package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"venuebook/internal/shared/transaction"
	"venuebook/pkg/logger"
)

// Dispatcher delivers one message to its consumers
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *OutboxMessage) error
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay polls pending outbox messages and hands them to a Dispatcher
type Relay struct {
	repo       Repository
	tx         transaction.Manager
	dispatcher Dispatcher
	config     RelayConfig
	log        *logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewRelay(repo Repository, tx transaction.Manager, dispatcher Dispatcher, config RelayConfig, log *logger.Logger) *Relay {
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Relay{
		repo:       repo,
		tx:         tx,
		dispatcher: dispatcher,
		config:     config,
		log:        log,
		stopCh:     make(chan struct{}),
	}
}

// Run polls until ctx is cancelled or Stop is called
func (r *Relay) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("outbox relay already running")
	}
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	r.log.Info("Outbox relay started")
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Outbox relay stopped")
			return nil
		case <-r.stopCh:
			r.log.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				r.log.ErrorWithContext(ctx, "outbox batch failed", err, nil)
			}
		}
	}
}

// Stop ends Run and waits for the in-flight batch
func (r *Relay) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()
	r.wg.Wait()
}

// ProcessBatch dispatches one batch of pending messages and returns how many were published
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.tx.Run(ctx, func(ctx context.Context) error {
		messages, err := r.repo.FetchPending(ctx, r.config.BatchSize)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			if dispatchErr := r.dispatcher.Dispatch(ctx, msg); dispatchErr != nil {
				msg.MarkAsFailed(dispatchErr)
				r.log.WarnWithContext(ctx, "outbox dispatch failed", dispatchErr, map[string]interface{}{
					"message_id": msg.ID.String(),
					"event_type": string(msg.EventType),
					"attempts":   msg.Attempts,
				})
			} else {
				msg.MarkAsPublished(time.Now().UTC())
				published++
			}
			msg.UpdatedAt = time.Now().UTC()

			if err := r.repo.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	})
	return published, err
}
