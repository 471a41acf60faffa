package cancellation

import (
	"net/http"

	"venuebook/internal/shared/apperr"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Controller handles cancellation, modification and policy requests
type Controller struct {
	service   Service
	validator *validator.Validate
}

// NewController creates a new cancellation controller
func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// Cancel handles POST /api/v1/reservations/:id/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	c.cancel(ctx, false)
}

// CancelByVenue handles POST /api/v1/venue/reservations/:id/cancel
func (c *Controller) CancelByVenue(ctx *gin.Context) {
	c.cancel(ctx, true)
}

func (c *Controller) cancel(ctx *gin.Context, byVenue bool) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req CancelRequest
	if ctx.Request.ContentLength > 0 {
		if !c.bind(ctx, &req) {
			return
		}
	}

	var (
		result *CancelResult
		err    error
	)
	if byVenue {
		result, err = c.service.CancelByVenue(ctx.Request.Context(), id, caller, req.Reason)
	} else {
		result, err = c.service.Cancel(ctx.Request.Context(), id, caller, req.Reason)
	}
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Reservation cancelled", result)
}

// RequestModification handles POST /api/v1/reservations/:id/modifications
func (c *Controller) RequestModification(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req ModificationRequestDTO
	if !c.bind(ctx, &req) {
		return
	}

	mod, err := c.service.RequestModification(ctx.Request.Context(), id, caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Modification request recorded", mod)
}

// ListModifications handles GET /api/v1/reservations/:id/modifications
func (c *Controller) ListModifications(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	mods, err := c.service.ListModifications(ctx.Request.Context(), id, caller)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Modification requests retrieved successfully", mods)
}

// DecideModification handles POST /api/v1/venue/modifications/:id/decide
func (c *Controller) DecideModification(ctx *gin.Context) {
	caller, id, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req DecideModificationRequest
	if !c.bind(ctx, &req) {
		return
	}

	mod, err := c.service.DecideModification(ctx.Request.Context(), id, caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Modification request decided", mod)
}

// GetPolicy handles GET /api/v1/venues/:id/cancellation-policy
func (c *Controller) GetPolicy(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperr.ErrInvalidRequest)
		return
	}

	policy, err := c.service.GetPolicy(ctx.Request.Context(), venueID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Cancellation policy retrieved successfully", policy)
}

// UpsertPolicy handles PUT /api/v1/admin/venues/:id/cancellation-policy
func (c *Controller) UpsertPolicy(ctx *gin.Context) {
	caller, venueID, ok := identityAndID(ctx)
	if !ok {
		return
	}

	var req PolicyRequest
	if !c.bind(ctx, &req) {
		return
	}

	policy, err := c.service.UpsertPolicy(ctx.Request.Context(), venueID, caller, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Cancellation policy saved", policy)
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondValidationError(ctx, err)
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondValidationError(ctx, err)
		return false
	}
	return true
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
