package waitlist

import "time"

// ExpireIfDue returns the entry moved to offer_expired when its offer deadline
// has passed. An offer is live only while now < offer_expires_at. The second
// result is false, and the entry unchanged, when nothing was due.
func ExpireIfDue(e Entry, now time.Time) (Entry, bool) {
	if e.Status != StatusOfferSent || e.OfferExpiresAt == nil || now.Before(*e.OfferExpiresAt) {
		return e, false
	}
	e.Status = StatusExpired
	e.UpdatedAt = now
	return e, true
}

// Offer opens a time-boxed offer on a waiting entry
func Offer(e Entry, now time.Time, ttl time.Duration) (Entry, error) {
	if !e.Status.CanTransitionTo(StatusOfferSent) {
		return e, ErrInvalidTransition
	}
	expires := now.Add(ttl)
	e.Status = StatusOfferSent
	e.OfferSentAt = &now
	e.OfferExpiresAt = &expires
	e.UpdatedAt = now
	return e, nil
}

// Transition moves the entry to next when the state machine allows it
func Transition(e Entry, next Status, now time.Time) (Entry, error) {
	if !e.Status.CanTransitionTo(next) {
		return e, ErrInvalidTransition
	}
	e.Status = next
	e.UpdatedAt = now
	return e, nil
}
