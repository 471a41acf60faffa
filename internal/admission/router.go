package admission

import (
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAdmissionRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth(cfg))
	{
		reservations.POST("", controller.CreateReservation) // POST /api/v1/reservations
	}
}
