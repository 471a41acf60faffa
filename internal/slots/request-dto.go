package slots

import "time"

type CreateSlotRequest struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	Capacity  *int       `json:"capacity" binding:"omitempty,min=0"`
}

type UpdateCapacityRequest struct {
	// null removes the cap
	Capacity *int `json:"capacity" binding:"omitempty,min=0"`
}

type ListSlotsQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}
