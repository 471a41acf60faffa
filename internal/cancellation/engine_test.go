package cancellation

import (
	"testing"
	"time"

	"venuebook/internal/reservations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundPercent(t *testing.T) {
	policy := Policy{CancellationEnabled: true, FreeCancellationHours: 24, PenaltyPercent: 50}

	assert.Equal(t, 100, RefundPercent(policy, 24), "boundary is inside the free window")
	assert.Equal(t, 100, RefundPercent(policy, 72))
	assert.Equal(t, 50, RefundPercent(policy, 23.99))
	assert.Equal(t, 0, RefundPercent(Policy{FreeCancellationHours: 24, PenaltyPercent: 100}, 1))
	assert.Equal(t, 100, RefundPercent(Policy{FreeCancellationHours: 0, PenaltyPercent: 100}, 0.1))
}

func TestRefundPercent_MonotonicInNotice(t *testing.T) {
	for _, penalty := range []int{0, 25, 50, 100} {
		for _, free := range []int{0, 6, 24, 48} {
			policy := Policy{FreeCancellationHours: free, PenaltyPercent: penalty}
			prev := -1
			for hours := 0.0; hours <= 96; hours += 0.5 {
				got := RefundPercent(policy, hours)
				assert.GreaterOrEqual(t, got, prev, "penalty=%d free=%d hours=%v", penalty, free, hours)
				assert.True(t, got >= 0 && got <= 100)
				prev = got
			}
		}
	}
}

func TestEvaluateCancellation(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{CancellationEnabled: true, FreeCancellationHours: 24, PenaltyPercent: 40}

	reservation := func(status reservations.Status, start time.Time) *reservations.Reservation {
		return &reservations.Reservation{Status: status, StartTime: start}
	}

	tests := []struct {
		name        string
		res         *reservations.Reservation
		policy      Policy
		byVenue     bool
		wantErr     error
		wantStatus  reservations.Status
		wantPercent int
	}{
		{
			name:        "free window",
			res:         reservation(reservations.StatusConfirmed, now.Add(48*time.Hour)),
			policy:      policy,
			wantStatus:  reservations.StatusCancelledUser,
			wantPercent: 100,
		},
		{
			name:        "late cancellation is penalised",
			res:         reservation(reservations.StatusConfirmed, now.Add(2*time.Hour)),
			policy:      policy,
			wantStatus:  reservations.StatusCancelledUser,
			wantPercent: 60,
		},
		{
			name:        "waitlisted reservations may cancel",
			res:         reservation(reservations.StatusWaitlist, now.Add(2*time.Hour)),
			policy:      policy,
			wantStatus:  reservations.StatusCancelledUser,
			wantPercent: 60,
		},
		{
			name:    "terminal status is rejected first",
			res:     reservation(reservations.StatusDeclined, now.Add(-time.Hour)),
			policy:  Policy{},
			wantErr: ErrCancellationNotAllowed,
		},
		{
			name:    "started is rejected before the policy switch",
			res:     reservation(reservations.StatusConfirmed, now),
			policy:  Policy{},
			wantErr: ErrAlreadyStarted,
		},
		{
			name:    "disabled policy",
			res:     reservation(reservations.StatusConfirmed, now.Add(48*time.Hour)),
			policy:  Policy{},
			wantErr: ErrCancellationDisabled,
		},
		{
			name:        "venue cancels in full even when parties cannot",
			res:         reservation(reservations.StatusConfirmed, now.Add(time.Hour)),
			policy:      Policy{},
			byVenue:     true,
			wantStatus:  reservations.StatusCancelledPro,
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := EvaluateCancellation(tt.res, tt.policy, now, tt.byVenue)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.wantPercent, outcome.RefundPercent)
		})
	}
}

func TestEvaluateModification(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{ModificationEnabled: true, ModificationDeadlineHours: 12}

	tests := []struct {
		name    string
		status  reservations.Status
		start   time.Time
		policy  Policy
		wantErr error
	}{
		{"confirmed before deadline", reservations.StatusConfirmed, now.Add(13 * time.Hour), policy, nil},
		{"waitlisted before deadline", reservations.StatusWaitlist, now.Add(13 * time.Hour), policy, nil},
		{"exactly at deadline", reservations.StatusConfirmed, now.Add(12 * time.Hour), policy, nil},
		{"past deadline", reservations.StatusConfirmed, now.Add(11 * time.Hour), policy, ErrModificationDeadlinePassed},
		{"terminal status", reservations.StatusCancelledUser, now.Add(48 * time.Hour), policy, ErrModificationNotAllowed},
		{"disabled is checked first", reservations.StatusCancelledUser, now, Policy{}, ErrModificationDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EvaluateModification(&reservations.Reservation{Status: tt.status, StartTime: tt.start}, tt.policy, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, Policy{PenaltyPercent: 100}.Validate())
	assert.ErrorIs(t, Policy{PenaltyPercent: 101}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{FreeCancellationHours: -1}.Validate(), ErrInvalidPolicy)
}
