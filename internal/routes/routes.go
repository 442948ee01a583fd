package routes

import (
	"github.com/gin-gonic/gin"

	"clinic-scheduling-server/internal/handlers"
	"clinic-scheduling-server/internal/middleware"
	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, scheduler *scheduling.Service, jwtSecret string) {
	// Initialize handlers
	availabilityHandler := handlers.NewAvailabilityHandler(scheduler)
	appointmentHandler := handlers.NewAppointmentHandler(scheduler)
	clinicHandler := handlers.NewClinicHandler(scheduler)

	// Authenticated routes; tokens are issued by the identity service.
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(jwtSecret))
	{
		availabilityRoutes := private.Group("/availability")
		{
			availabilityRoutes.POST("/check", availabilityHandler.CheckAvailability)
			availabilityRoutes.POST("/find-slots", availabilityHandler.FindSlots)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/contact/:contactId", appointmentHandler.GetContactAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)

			// Deleting is an administrative action; staff cancel instead.
			appointmentRoutes.DELETE("/:id",
				middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleReceptionist),
				appointmentHandler.DeleteAppointment)
		}

		clinicRoutes := private.Group("/clinic/:clinicId")
		clinicRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePlatformAdmin))
		{
			clinicRoutes.POST("/appointments/reassign", clinicHandler.ReassignAppointments)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
