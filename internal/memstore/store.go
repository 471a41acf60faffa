// Package memstore keeps every repository in process memory. It backs the
// "memory" store driver and the scenario tests; values are copied on the way
// in and out so callers never share state with the store.
package memstore

import (
	"sync"
	"time"

	"venuebook/internal/audit"
	"venuebook/internal/cancellation"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	venues        map[uuid.UUID]*venues.Venue
	slots         map[uuid.UUID]*slots.Slot
	reservations  map[uuid.UUID]*reservations.Reservation
	entries       map[uuid.UUID]*waitlist.Entry
	audit         []*audit.Entry
	outbox        []*outbox.OutboxMessage
	policies      map[uuid.UUID]*cancellation.Policy
	cancellations map[uuid.UUID]*cancellation.Cancellation
	modifications map[uuid.UUID]*cancellation.ModificationRequest
}

func New() *Store {
	return &Store{
		venues:        make(map[uuid.UUID]*venues.Venue),
		slots:         make(map[uuid.UUID]*slots.Slot),
		reservations:  make(map[uuid.UUID]*reservations.Reservation),
		entries:       make(map[uuid.UUID]*waitlist.Entry),
		policies:      make(map[uuid.UUID]*cancellation.Policy),
		cancellations: make(map[uuid.UUID]*cancellation.Cancellation),
		modifications: make(map[uuid.UUID]*cancellation.ModificationRequest),
	}
}

func (s *Store) Venues() venues.Repository             { return &venueRepo{s} }
func (s *Store) Slots() slots.Repository               { return &slotRepo{s} }
func (s *Store) Reservations() reservations.Repository { return &reservationRepo{s} }
func (s *Store) Waitlist() waitlist.Repository         { return &entryRepo{s} }
func (s *Store) Audit() audit.Repository               { return &auditRepo{s} }
func (s *Store) Outbox() outbox.Repository             { return &outboxRepo{s} }
func (s *Store) Cancellation() cancellation.Repository { return &cancellationRepo{s} }

func now() time.Time {
	return time.Now().UTC()
}

func stamp(created, updated *time.Time) {
	t := now()
	if created.IsZero() {
		*created = t
	}
	if updated != nil && updated.IsZero() {
		*updated = t
	}
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func containsStatus[T comparable](set []T, s T) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
