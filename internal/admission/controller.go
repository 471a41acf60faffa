package admission

import (
	"net/http"

	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateReservation answers 201 for a seated request and 202 when the
// request was queued on the waitlist
func (c *Controller) CreateReservation(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	decision, err := c.service.Admit(ctx.Request.Context(), req, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	if decision.Waitlisted() {
		response.RespondSuccess(ctx, http.StatusAccepted, "Slot is full, reservation added to the waitlist", decision)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Reservation created successfully", decision)
}
