package venues

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public venue reads
	public := rg.Group("/venues")
	{
		public.GET("/:id", controller.GetVenue) // GET /api/v1/venues/:id
	}

	admin := rg.Group("/admin/venues")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateVenue)    // POST /api/v1/admin/venues
		admin.GET("", controller.ListVenues)      // GET /api/v1/admin/venues
		admin.PUT("/:id", controller.UpdateVenue) // PUT /api/v1/admin/venues/:id
	}
}
