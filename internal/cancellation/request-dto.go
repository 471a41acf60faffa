package cancellation

import "github.com/google/uuid"

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ModificationRequestDTO struct {
	SlotID    *uuid.UUID `json:"slot_id"`
	PartySize *int       `json:"party_size" validate:"omitempty,gte=1,lte=1000"`
	Reason    string     `json:"reason" validate:"max=500"`
}

type DecideModificationRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason" validate:"max=500"`
}

type PolicyRequest struct {
	CancellationEnabled       bool `json:"cancellation_enabled"`
	FreeCancellationHours     int  `json:"free_cancellation_hours" validate:"gte=0"`
	PenaltyPercent            int  `json:"penalty_percent" validate:"gte=0,lte=100"`
	ModificationEnabled       bool `json:"modification_enabled"`
	ModificationDeadlineHours int  `json:"modification_deadline_hours" validate:"gte=0"`
}
