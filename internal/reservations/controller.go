package reservations

import (
	"net/http"

	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListMine(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	reservations, err := c.service.ListMine(ctx.Request.Context(), caller.PartyID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Reservations retrieved successfully", reservations)
}

func (c *Controller) GetReservation(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.GetReservation(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Reservation retrieved successfully", reservation)
}

func (c *Controller) GetAuditTrail(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	entries, err := c.service.AuditTrail(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Audit trail retrieved successfully", entries)
}

func (c *Controller) ListSlotReservations(ctx *gin.Context) {
	caller, slotID, ok := identityAndID(ctx)
	if !ok {
		return
	}

	reservations, err := c.service.ListSlotReservations(ctx.Request.Context(), slotID, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slot reservations retrieved successfully", reservations)
}

func (c *Controller) Accept(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.Accept(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Reservation accepted", reservation)
}

func (c *Controller) Decline(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req DeclineRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondValidationError(ctx, err)
			return
		}
	}

	reservation, err := c.service.Decline(ctx.Request.Context(), id, caller, req.Reason)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Reservation declined", reservation)
}

func (c *Controller) MarkNoShow(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.MarkNoShow(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "No-show recorded", reservation)
}

func (c *Controller) UpdatePayment(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	reservation, err := c.service.UpdatePayment(ctx.Request.Context(), id, caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Payment status updated", reservation)
}

// identityAndID reads the caller and the :id path parameter, writing the
// error response itself when either is missing
func identityAndID(ctx *gin.Context) (middleware.Identity, uuid.UUID, bool) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return middleware.Identity{}, uuid.Nil, false
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return middleware.Identity{}, uuid.Nil, false
	}
	return caller, id, true
}
