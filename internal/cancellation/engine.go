package cancellation

import (
	"time"

	"venuebook/internal/reservations"
)

// Outcome is the result of evaluating a cancellation
type Outcome struct {
	Status        reservations.Status
	RefundPercent int
	HoursToStart  float64
}

// EvaluateCancellation decides whether res may be cancelled now and with which
// refund. Venue-initiated cancellations always refund in full.
func EvaluateCancellation(res *reservations.Reservation, policy Policy, now time.Time, byVenue bool) (Outcome, error) {
	if !res.Status.IsActive() {
		return Outcome{}, ErrCancellationNotAllowed
	}
	if !now.Before(res.StartTime) {
		return Outcome{}, ErrAlreadyStarted
	}

	hours := HoursToStart(res.StartTime, now)
	if byVenue {
		return Outcome{Status: reservations.StatusCancelledPro, RefundPercent: 100, HoursToStart: hours}, nil
	}
	if !policy.CancellationEnabled {
		return Outcome{}, ErrCancellationDisabled
	}

	return Outcome{
		Status:        reservations.StatusCancelledUser,
		RefundPercent: RefundPercent(policy, hours),
		HoursToStart:  hours,
	}, nil
}

// RefundPercent is 100 inside the free window and 100 minus the penalty after it
func RefundPercent(policy Policy, hoursToStart float64) int {
	if hoursToStart >= float64(policy.FreeCancellationHours) {
		return 100
	}
	percent := 100 - policy.PenaltyPercent
	if percent < 0 {
		return 0
	}
	return percent
}

// EvaluateModification reports whether a change to res may still be requested
func EvaluateModification(res *reservations.Reservation, policy Policy, now time.Time) error {
	if !policy.ModificationEnabled {
		return ErrModificationDisabled
	}
	if !res.Status.IsOccupying() && res.Status != reservations.StatusWaitlist {
		return ErrModificationNotAllowed
	}
	if HoursToStart(res.StartTime, now) < float64(policy.ModificationDeadlineHours) {
		return ErrModificationDeadlinePassed
	}
	return nil
}

func HoursToStart(start, now time.Time) float64 {
	return start.Sub(now).Hours()
}
