package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"clinic-scheduling-server/internal/middleware"
	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
	"clinic-scheduling-server/internal/utils"
)

// ClinicHandler serves clinic-level maintenance operations.
type ClinicHandler struct {
	Scheduler *scheduling.Service
}

func NewClinicHandler(scheduler *scheduling.Service) *ClinicHandler {
	return &ClinicHandler{Scheduler: scheduler}
}

// ReassignAppointments moves appointments owned by departed or inactive
// professionals onto an active one. The body is optional.
func (h *ClinicHandler) ReassignAppointments(c *gin.Context) {
	clinicID := c.Param("clinicId")
	if clinicID == "" {
		utils.BadRequest(c, "Clinic ID is required")
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RolePlatformAdmin {
		tokenClinic, _ := middleware.GetClinicIDFromContext(c)
		if tokenClinic != clinicID {
			utils.Forbidden(c, "You are not authorized to manage this clinic.")
			return
		}
	}

	var opts scheduling.ReassignOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+utils.FormatValidationError(err))
		return
	}

	result, err := h.Scheduler.ReassignOrphanedAppointments(c.Request.Context(), clinicID, opts)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, result.Message, result)
}
