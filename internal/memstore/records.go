package memstore

import (
	"context"
	"sort"

	"venuebook/internal/audit"
	"venuebook/internal/cancellation"
	"venuebook/internal/outbox"

	"github.com/google/uuid"
)

type auditRepo struct{ s *Store }

func (r *auditRepo) Append(ctx context.Context, entries ...*audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		stamp(&e.CreatedAt, nil)
		c := *e
		r.s.audit = append(r.s.audit, &c)
	}
	return nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*audit.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*audit.Entry
	for _, e := range r.s.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Create(ctx context.Context, messages ...*outbox.OutboxMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range messages {
		c := *m
		r.s.outbox = append(r.s.outbox, &c)
	}
	return nil
}

func (r *outboxRepo) FetchPending(ctx context.Context, limit int) ([]*outbox.OutboxMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*outbox.OutboxMessage
	for _, m := range r.s.outbox {
		if m.Status != outbox.MessageStatusPending {
			continue
		}
		c := *m
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *outboxRepo) Save(ctx context.Context, message *outbox.OutboxMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, m := range r.s.outbox {
		if m.ID == message.ID {
			c := *message
			r.s.outbox[i] = &c
			return nil
		}
	}
	return nil
}

// Messages returns every outbox message written so far, oldest first
func (s *Store) Messages() []*outbox.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*outbox.OutboxMessage, 0, len(s.outbox))
	for _, m := range s.outbox {
		c := *m
		out = append(out, &c)
	}
	return out
}

type cancellationRepo struct{ s *Store }

func (r *cancellationRepo) GetPolicy(ctx context.Context, venueID uuid.UUID) (*cancellation.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.policies[venueID]
	if !ok {
		return nil, cancellation.ErrPolicyNotFound
	}
	c := *p
	return &c, nil
}

func (r *cancellationRepo) UpsertPolicy(ctx context.Context, policy *cancellation.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := now()
	if existing, ok := r.s.policies[policy.VenueID]; ok {
		policy.CreatedAt = existing.CreatedAt
	} else if policy.CreatedAt.IsZero() {
		policy.CreatedAt = t
	}
	policy.UpdatedAt = t
	c := *policy
	r.s.policies[policy.VenueID] = &c
	return nil
}

func (r *cancellationRepo) CreateCancellation(ctx context.Context, record *cancellation.Cancellation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	stamp(&record.CreatedAt, nil)
	c := *record
	r.s.cancellations[record.ReservationID] = &c
	return nil
}

func (r *cancellationRepo) GetCancellationByReservation(ctx context.Context, reservationID uuid.UUID) (*cancellation.Cancellation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	record, ok := r.s.cancellations[reservationID]
	if !ok {
		return nil, nil
	}
	c := *record
	return &c, nil
}

func cloneModification(m *cancellation.ModificationRequest) *cancellation.ModificationRequest {
	c := *m
	c.RequestedSlotID = copyUUID(m.RequestedSlotID)
	c.RequestedPartySize = copyInt(m.RequestedPartySize)
	c.DecidedBy = copyUUID(m.DecidedBy)
	c.DecidedAt = copyTime(m.DecidedAt)
	return &c
}

func (r *cancellationRepo) CreateModification(ctx context.Context, mod *cancellation.ModificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if mod.ID == uuid.Nil {
		mod.ID = uuid.New()
	}
	stamp(&mod.CreatedAt, &mod.UpdatedAt)
	r.s.modifications[mod.ID] = cloneModification(mod)
	return nil
}

func (r *cancellationRepo) GetModification(ctx context.Context, id uuid.UUID) (*cancellation.ModificationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	mod, ok := r.s.modifications[id]
	if !ok {
		return nil, cancellation.ErrModificationNotFound
	}
	return cloneModification(mod), nil
}

func (r *cancellationRepo) FindPendingModification(ctx context.Context, reservationID uuid.UUID) (*cancellation.ModificationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, mod := range r.s.modifications {
		if mod.ReservationID == reservationID && mod.Status == cancellation.ModificationPending {
			return cloneModification(mod), nil
		}
	}
	return nil, nil
}

func (r *cancellationRepo) ListModifications(ctx context.Context, reservationID uuid.UUID) ([]*cancellation.ModificationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*cancellation.ModificationRequest
	for _, mod := range r.s.modifications {
		if mod.ReservationID == reservationID {
			out = append(out, cloneModification(mod))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *cancellationRepo) DecideModification(ctx context.Context, mod *cancellation.ModificationRequest) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.modifications[mod.ID]
	if !ok || stored.Status != cancellation.ModificationPending {
		return false, nil
	}
	mod.UpdatedAt = now()
	stored.Status = mod.Status
	stored.Reason = mod.Reason
	stored.DecidedBy = copyUUID(mod.DecidedBy)
	stored.DecidedAt = copyTime(mod.DecidedAt)
	stored.UpdatedAt = mod.UpdatedAt
	return true, nil
}
