package routes

import (
	"github.com/gatherly/server/internal/container"
	"github.com/gatherly/server/internal/handlers"
	"github.com/gatherly/server/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "gatherly-api",
			})
		})

		// public reads
		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/:id", handlers.GetEvent(container.EventService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Logger))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.PUT("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
		eventRoutes.POST("/:id/rsvp", handlers.JoinEvent(container.EventService))
		eventRoutes.POST("/:id/unrsvp", handlers.LeaveEvent(container.EventService))
	}

	// personal listings live under /me to keep /events/:id unambiguous
	meRoutes := protected.Group("/me/events")
	{
		meRoutes.GET("/created", handlers.ListCreatedEvents(container.EventService))
		meRoutes.GET("/attending", handlers.ListAttendingEvents(container.EventService))
	}

	return r
}
