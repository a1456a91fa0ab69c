package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/agenda-engine/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	availability *ucAppointment.GetAvailability
	create       *ucAppointment.CreateAppointment
	edit         *ucAppointment.EditAppointment
	remove       *ucAppointment.RemoveAppointment
	changeStatus *ucAppointment.ChangeStatus
	listByDate   *ucAppointment.ListAppointmentsByDate
	listUpcoming *ucAppointment.ListUpcomingAppointments
}

func NewAppointmentHandler(
	availability *ucAppointment.GetAvailability,
	create *ucAppointment.CreateAppointment,
	edit *ucAppointment.EditAppointment,
	remove *ucAppointment.RemoveAppointment,
	changeStatus *ucAppointment.ChangeStatus,
	listByDate *ucAppointment.ListAppointmentsByDate,
	listUpcoming *ucAppointment.ListUpcomingAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		availability: availability,
		create:       create,
		edit:         edit,
		remove:       remove,
		changeStatus: changeStatus,
		listByDate:   listByDate,
		listUpcoming: listUpcoming,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientID      string `json:"client_id"`
	ClientName    string `json:"client_name" binding:"required"`
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	DurationMin   int    `json:"duration_min"`
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	Notes         string `json:"notes"`
	BookingSource string `json:"booking_source"`
	Status        string `json:"status"`
}

type UpdateAppointmentRequest struct {
	ClientName *string `json:"client_name,omitempty"`
	ServiceID  *string `json:"service_id,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  *string `json:"start_time,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "date_required", "Query parameter date is required.")
		return
	}

	res, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		BusinessID: businessID(c),
		Date:       date,
		ServiceID:  c.Query("service_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// CRUD
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		BusinessID:    businessID(c),
		UserID:        userID(c),
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		ServiceID:     req.ServiceID,
		ServiceName:   req.ServiceName,
		DurationMin:   req.DurationMin,
		Date:          req.Date,
		StartTime:     req.StartTime,
		Notes:         req.Notes,
		BookingSource: req.BookingSource,
		Status:        domain.Status(req.Status),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.edit.Execute(c.Request.Context(), ucAppointment.EditAppointmentInput{
		BusinessID:    businessID(c),
		UserID:        userID(c),
		AppointmentID: c.Param("id"),
		ClientName:    req.ClientName,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	if _, err := h.remove.Execute(c.Request.Context(), businessID(c), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	ap, err := h.changeStatus.Execute(c.Request.Context(), ucAppointment.ChangeStatusInput{
		BusinessID:    businessID(c),
		UserID:        userID(c),
		AppointmentID: c.Param("id"),
		Status:        status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LISTS
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "date_required", "Query parameter date is required.")
		return
	}

	list, err := h.listByDate.Execute(c.Request.Context(), businessID(c), date)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, list)
}

func (h *AppointmentHandler) Upcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	list, err := h.listUpcoming.Execute(c.Request.Context(), businessID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, list)
}
