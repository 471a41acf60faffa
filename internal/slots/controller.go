package slots

import (
	"net/http"

	"venuebook/internal/shared/apperr"
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

func (c *Controller) CreateSlot(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	var req CreateSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	slot, err := c.service.CreateSlot(ctx.Request.Context(), venueID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Slot created successfully", slot)
}

func (c *Controller) GetSlot(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	slot, err := c.service.GetSlot(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slot retrieved successfully", slot)
}

func (c *Controller) GetAvailability(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	availability, err := c.service.Availability(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Availability retrieved successfully", availability)
}

func (c *Controller) ListVenueSlots(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	var query ListSlotsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	slots, err := c.service.ListVenueSlots(ctx.Request.Context(), venueID, query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slots retrieved successfully", slots)
}

func (c *Controller) UpdateCapacity(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	var req UpdateCapacityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	slot, err := c.service.UpdateCapacity(ctx.Request.Context(), id, req.Capacity)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slot capacity updated", slot)
}

func (c *Controller) Deactivate(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	if err := c.service.Deactivate(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Slot deactivated", nil)
}
