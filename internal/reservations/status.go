package reservations

type Status string

const (
	StatusRequested            Status = "requested"
	StatusPendingProValidation Status = "pending_pro_validation"
	StatusConfirmed            Status = "confirmed"
	StatusWaitlist             Status = "waitlist"
	StatusCancelledUser        Status = "cancelled_user"
	StatusCancelledPro         Status = "cancelled_pro"
	StatusDeclined             Status = "declined"
	StatusExpired              Status = "expired"
)

// IsValid checks if the reservation status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusPendingProValidation, StatusConfirmed, StatusWaitlist,
		StatusCancelledUser, StatusCancelledPro, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsOccupying reports whether the status consumes slot capacity
func (s Status) IsOccupying() bool {
	switch s {
	case StatusConfirmed, StatusPendingProValidation, StatusRequested:
		return true
	}
	return false
}

// IsActive reports whether the reservation still holds or waits for a seat
func (s Status) IsActive() bool {
	return s.IsOccupying() || s == StatusWaitlist
}

// IsTerminal reports whether the reservation is finished
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelledUser, StatusCancelledPro, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// OccupyingStatuses lists every status counted by the capacity accountant
func OccupyingStatuses() []Status {
	return []Status{StatusConfirmed, StatusPendingProValidation, StatusRequested}
}

// ActiveStatuses lists the statuses the duplicate guard considers
func ActiveStatuses() []Status {
	return []Status{StatusConfirmed, StatusPendingProValidation, StatusRequested, StatusWaitlist}
}

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaid        PaymentStatus = "paid"
	PaymentRefunded    PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentNotRequired, PaymentPending, PaymentDepositPaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}
