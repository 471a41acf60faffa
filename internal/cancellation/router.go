package cancellation

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Party actions on their own reservations
	party := rg.Group("/reservations")
	party.Use(middleware.JWTAuth(cfg))
	{
		party.POST("/:id/cancel", controller.Cancel)                     // POST /api/v1/reservations/:id/cancel
		party.POST("/:id/modifications", controller.RequestModification) // POST /api/v1/reservations/:id/modifications
		party.GET("/:id/modifications", controller.ListModifications)    // GET /api/v1/reservations/:id/modifications
	}

	// Venue staff actions
	venue := rg.Group("/venue")
	venue.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleVenue, middleware.RoleAdmin))
	{
		venue.POST("/reservations/:id/cancel", controller.CancelByVenue)       // POST /api/v1/venue/reservations/:id/cancel
		venue.POST("/modifications/:id/decide", controller.DecideModification) // POST /api/v1/venue/modifications/:id/decide
	}

	rg.GET("/venues/:id/cancellation-policy", controller.GetPolicy) // GET /api/v1/venues/:id/cancellation-policy

	admin := rg.Group("/admin/venues")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.PUT("/:id/cancellation-policy", controller.UpsertPolicy) // PUT /api/v1/admin/venues/:id/cancellation-policy
	}
}
