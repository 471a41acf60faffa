// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "venuebook/docs"
	"venuebook/internal/admission"
	"venuebook/internal/cancellation"
	"venuebook/internal/reservations"
	"venuebook/internal/shared/database"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	container *Container
	db        *database.DB
}

// NewRouter creates a new router instance. db is nil with the memory store.
func NewRouter(container *Container, db *database.DB) *Router {
	return &Router{
		container: container,
		db:        db,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	cfg := r.container.Config

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := engine.Group(cfg.GetAPIBasePath())
	{
		venues.SetupVenueRoutes(api, venues.NewController(r.container.Venues), cfg)
		slots.SetupSlotRoutes(api, slots.NewController(r.container.Slots), cfg)

		// admission owns POST /reservations; the rest of the reservation surface
		// lives with the reservation and cancellation packages
		admission.SetupAdmissionRoutes(api, admission.NewController(r.container.Admission), cfg)
		reservations.SetupReservationRoutes(api, reservations.NewController(r.container.Reservations), cfg)
		cancellation.SetupCancellationRoutes(api, cancellation.NewController(r.container.Cancellation), cfg)
		waitlist.SetupWaitlistRoutes(api, waitlist.NewController(r.container.Waitlist), cfg)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		backends := database.Health{}
		if r.db != nil {
			backends = r.db.HealthCheck(c.Request.Context())
		}

		code, state := http.StatusOK, "healthy"
		if !backends.Healthy() {
			code, state = http.StatusServiceUnavailable, "unhealthy"
		}
		c.JSON(code, gin.H{
			"status":    state,
			"store":     r.container.Config.StoreDriver,
			"backends":  backends,
			"timestamp": time.Now(),
			"service":   "venuebook",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.container.Config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.container.Config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
