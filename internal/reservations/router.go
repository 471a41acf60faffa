package reservations

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes registers reads and venue actions. Creation and
// cancellation are registered by the admission and cancellation packages.
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	party := rg.Group("/reservations")
	party.Use(middleware.JWTAuth(cfg))
	{
		party.GET("", controller.ListMine)                // GET /api/v1/reservations
		party.GET("/:id", controller.GetReservation)      // GET /api/v1/reservations/:id
		party.GET("/:id/audit", controller.GetAuditTrail) // GET /api/v1/reservations/:id/audit
	}

	venue := rg.Group("/venue")
	venue.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleVenue, middleware.RoleAdmin))
	{
		venue.POST("/reservations/:id/accept", controller.Accept)             // POST /api/v1/venue/reservations/:id/accept
		venue.POST("/reservations/:id/decline", controller.Decline)           // POST /api/v1/venue/reservations/:id/decline
		venue.POST("/reservations/:id/no-show", controller.MarkNoShow)        // POST /api/v1/venue/reservations/:id/no-show
		venue.PUT("/reservations/:id/payment", controller.UpdatePayment)      // PUT /api/v1/venue/reservations/:id/payment
		venue.GET("/slots/:id/reservations", controller.ListSlotReservations) // GET /api/v1/venue/slots/:id/reservations
	}
}
