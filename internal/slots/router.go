package slots

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSlotRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	public := rg.Group("")
	{
		public.GET("/slots/:id", controller.GetSlot)                      // GET /api/v1/slots/:id
		public.GET("/slots/:id/availability", controller.GetAvailability) // GET /api/v1/slots/:id/availability
		public.GET("/venues/:id/slots", controller.ListVenueSlots)        // GET /api/v1/venues/:id/slots
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("/venues/:id/slots", controller.CreateSlot)      // POST /api/v1/admin/venues/:id/slots
		admin.PUT("/slots/:id/capacity", controller.UpdateCapacity) // PUT /api/v1/admin/slots/:id/capacity
		admin.POST("/slots/:id/deactivate", controller.Deactivate)  // POST /api/v1/admin/slots/:id/deactivate
	}
}
