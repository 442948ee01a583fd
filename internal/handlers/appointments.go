package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clinic-scheduling-server/internal/middleware"
	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
	"clinic-scheduling-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{Scheduler: scheduler}
}

// clinicScope returns the clinic the caller's token is scoped to, answering
// 403 when there is none.
func clinicScope(c *gin.Context) (string, bool) {
	clinicID, ok := middleware.GetClinicIDFromContext(c)
	if !ok {
		utils.Forbidden(c, "Token is not scoped to a clinic")
		return "", false
	}
	return clinicID, true
}

// appointmentIDParam validates the :id path parameter.
func appointmentIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return "", false
	}
	return id, true
}

// CreateAppointment books an appointment after a guarded availability check.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	var req scheduling.AppointmentInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.CreateAppointment(c.Request.Context(), clinicID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments lists the clinic's appointments, one page at a time.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	var query scheduling.ListQuery
	if !utils.BindQueryAndValidate(c, &query) {
		return
	}

	page, err := h.Scheduler.ListAppointments(c.Request.Context(), clinicID, query)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", page)
}

// GetContactAppointments returns one contact's appointment history.
func (h *AppointmentHandler) GetContactAppointments(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	contactID := c.Param("contactId")
	if _, err := uuid.Parse(contactID); err != nil {
		utils.BadRequest(c, "Invalid Contact ID format")
		return
	}

	appointments, err := h.Scheduler.AppointmentsForContact(c.Request.Context(), clinicID, contactID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	appointment, err := h.Scheduler.GetAppointment(c.Request.Context(), clinicID, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointment edits an appointment; time or professional changes are
// re-checked for conflicts.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}
	if !h.authorizeOwnAppointment(c, clinicID, id) {
		return
	}
	var req scheduling.AppointmentInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.UpdateAppointment(c.Request.Context(), clinicID, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	ScheduledStart  string `json:"scheduledStart" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=1,max=1440"`
	Notes           string `json:"notes"`
}

// RescheduleAppointment moves an appointment to a new start time.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}
	if !h.authorizeOwnAppointment(c, clinicID, id) {
		return
	}
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.UpdateAppointment(c.Request.Context(), clinicID, id, scheduling.AppointmentInput{
		ScheduledStart:  req.ScheduledStart,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=scheduled confirmed completed cancelled no_show rescheduled"`
}

// UpdateAppointmentStatus handles a status-only transition. Cancelling
// frees the slot.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}
	if !h.authorizeOwnAppointment(c, clinicID, id) {
		return
	}
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.UpdateAppointmentStatus(c.Request.Context(), clinicID, id, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// DeleteAppointment removes an appointment.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	if err := h.Scheduler.DeleteAppointment(c.Request.Context(), clinicID, id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}

// authorizeOwnAppointment lets professionals modify only their own
// appointments. Other clinic roles may modify any appointment.
func (h *AppointmentHandler) authorizeOwnAppointment(c *gin.Context, clinicID, id string) bool {
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleProfessional {
		return true
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	appointment, err := h.Scheduler.GetAppointment(c.Request.Context(), clinicID, id)
	if err != nil {
		utils.RespondError(c, err)
		return false
	}
	if appointment.ProfessionalID != userID {
		utils.Forbidden(c, "You are not authorized to modify this appointment.")
		return false
	}
	return true
}
