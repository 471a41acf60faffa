package waitlist

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
	return &Controller{
		service: service,
	}
}

func (c *Controller) ListMine(ctx *gin.Context) {
	caller, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	entries, err := c.service.ListMine(ctx.Request.Context(), caller.PartyID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Waitlist entries retrieved successfully", entries)
}

func (c *Controller) GetEntry(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	entry, err := c.service.GetEntry(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Waitlist entry retrieved successfully", entry)
}

func (c *Controller) AcceptOffer(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	result, err := c.service.AcceptOffer(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Offer accepted, reservation confirmed", result)
}

func (c *Controller) RefuseOffer(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	result, err := c.service.RefuseOffer(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Offer refused", result)
}

func (c *Controller) Withdraw(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	result, err := c.service.Withdraw(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Left the waitlist", result)
}

func (c *Controller) ListSlotQueue(ctx *gin.Context) {
	caller, slotID, ok := identityAndID(ctx)
	if !ok {
		return
	}

	entries, err := c.service.ListSlotQueue(ctx.Request.Context(), slotID, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slot queue retrieved successfully", gin.H{
		"entries": entries,
		"length":  len(entries),
	})
}

// PromoteNow runs a promotion pass synchronously. Used by operators to
// unstick a queue after a failed background pass.
func (c *Controller) PromoteNow(ctx *gin.Context) {
	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	offered, err := c.service.PromoteNow(ctx.Request.Context(), slotID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Promotion pass completed", gin.H{
		"offered": offered,
		"count":   len(offered),
	})
}

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
