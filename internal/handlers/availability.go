package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-scheduling-server/internal/scheduling"
	"clinic-scheduling-server/internal/utils"
)

// AvailabilityHandler exposes the conflict check and slot finder.
type AvailabilityHandler struct {
	Scheduler *scheduling.Service
}

func NewAvailabilityHandler(scheduler *scheduling.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Scheduler: scheduler}
}

// CheckAvailability answers 200 for both outcomes; a conflict is data.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	var req scheduling.AvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	res, err := h.Scheduler.CheckAvailability(c.Request.Context(), clinicID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	message := "Time slot is available"
	if !res.Available {
		message = "Time slot is not available"
	}
	utils.Success(c, message, res)
}

// FindSlots lists the open slots of one clinic-local day.
func (h *AvailabilityHandler) FindSlots(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	var req scheduling.TimeSlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	res, err := h.Scheduler.FindAvailableSlots(c.Request.Context(), clinicID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Available slots fetched successfully", res)
}
