package waitlist

import (
	"context"
	"time"

	"venuebook/internal/shared/locks"
	"venuebook/internal/shared/transaction"
	"venuebook/internal/slots"
	"venuebook/pkg/logger"

	"github.com/google/uuid"
)

// Promoter turns released capacity into offers for the head of a slot's queue
type Promoter struct {
	locker     locks.SlotLocker
	tx         transaction.Manager
	slots      slots.Repository
	accountant *slots.Accountant
	engine     *Engine
	log        *logger.Logger
}

func NewPromoter(locker locks.SlotLocker, tx transaction.Manager, slotRepo slots.Repository, accountant *slots.Accountant, engine *Engine, log *logger.Logger) *Promoter {
	return &Promoter{
		locker:     locker,
		tx:         tx,
		slots:      slotRepo,
		accountant: accountant,
		engine:     engine,
		log:        log,
	}
}

// Promote runs one pass over the slot's queue and returns the entries that
// received an offer. Seats held by live offers count against the free figure,
// so an offer is never issued for seats another open offer already claims.
func (p *Promoter) Promote(ctx context.Context, slotID uuid.UUID) ([]*Entry, error) {
	started := time.Now()

	unlock, err := p.locker.Lock(ctx, slotID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var offered []*Entry
	err = p.tx.Run(ctx, func(ctx context.Context) error {
		offered = nil

		slot, err := p.slots.GetForUpdate(ctx, slotID)
		if err != nil {
			return err
		}

		live, _, err := p.engine.ExpireDueOnSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if !slot.IsActive {
			return nil
		}

		usage, err := p.accountant.Usage(ctx, slot)
		if err != nil {
			return err
		}

		unlimited := usage.Unlimited()
		free := 0
		if !unlimited {
			free = *usage.Remaining
			for _, entry := range live {
				if entry.Status == StatusOfferSent {
					free -= entry.PartySize
				}
			}
		}

		for _, entry := range live {
			if !unlimited && free <= 0 {
				break
			}
			if entry.Status != StatusWaiting {
				continue
			}
			if !unlimited && entry.PartySize > free {
				continue
			}

			ok, err := p.engine.Offer(ctx, entry)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			offered = append(offered, entry)
			free -= entry.PartySize
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.LogPromotionPass(ctx, slotID.String(), len(offered), time.Since(started))
	return offered, nil
}
