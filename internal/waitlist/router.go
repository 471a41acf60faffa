package waitlist

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes configures the party, venue and admin waitlist routes
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	party := rg.Group("/waitlist")
	party.Use(middleware.JWTAuth(cfg))
	{
		party.GET("/me", controller.ListMine)             // GET /api/v1/waitlist/me
		party.GET("/:id", controller.GetEntry)            // GET /api/v1/waitlist/:id
		party.POST("/:id/accept", controller.AcceptOffer) // POST /api/v1/waitlist/:id/accept
		party.POST("/:id/refuse", controller.RefuseOffer) // POST /api/v1/waitlist/:id/refuse
		party.DELETE("/:id", controller.Withdraw)         // DELETE /api/v1/waitlist/:id
	}

	venue := rg.Group("/venue")
	venue.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(middleware.RoleVenue, middleware.RoleAdmin))
	{
		venue.GET("/slots/:id/waitlist", controller.ListSlotQueue) // GET /api/v1/venue/slots/:id/waitlist
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("/slots/:id/promote", controller.PromoteNow) // POST /api/v1/admin/slots/:id/promote
	}
}
