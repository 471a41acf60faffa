package venues

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

func (c *Controller) CreateVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	venue, err := c.service.CreateVenue(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Venue created successfully", venue)
}

func (c *Controller) UpdateVenue(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	var req UpdateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(ctx, err)
		return
	}

	venue, err := c.service.UpdateVenue(ctx.Request.Context(), id, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Venue updated successfully", venue)
}

func (c *Controller) GetVenue(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	venue, err := c.service.GetVenue(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Venue retrieved successfully", venue)
}

func (c *Controller) ListVenues(ctx *gin.Context) {
	venues, err := c.service.ListVenues(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Venues retrieved successfully", venues)
}
