package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/repository"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

type BusinessHoursHandler struct {
	catalog  *repository.CatalogGormRepository
	defaults domain.BusinessHours
	step     int
}

func NewBusinessHoursHandler(
	catalog *repository.CatalogGormRepository,
	defaults domain.BusinessHours,
	step int,
) *BusinessHoursHandler {
	return &BusinessHoursHandler{catalog: catalog, defaults: defaults, step: step}
}

type BusinessHoursRequest struct {
	StartHour   int `json:"start_hour"`
	EndHour     int `json:"end_hour"`
	StepMinutes int `json:"step_minutes"`
}

// Get answers with the configured defaults when the business never saved hours.
func (h *BusinessHoursHandler) Get(c *gin.Context) {
	hours, found, err := h.catalog.GetBusinessHours(c.Request.Context(), businessID(c))
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_load_hours", "Could not load business hours.")
		return
	}

	if !found {
		hours = &models.BusinessHours{
			BusinessID:  businessID(c),
			StartHour:   h.defaults.StartHour,
			EndHour:     h.defaults.EndHour,
			StepMinutes: h.step,
		}
	}

	httpresp.OK(c, hours)
}

func (h *BusinessHoursHandler) Update(c *gin.Context) {
	var req BusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.StartHour < 0 || req.EndHour > 24 || req.StartHour >= req.EndHour {
		httperr.BadRequest(c, "invalid_hours", "Opening hour must be before closing hour, within 0-24.")
		return
	}
	if req.StepMinutes < 0 || req.StepMinutes > 24*60 {
		httperr.BadRequest(c, "invalid_step", "Slot step must be at most 1440 minutes.")
		return
	}

	hours := models.BusinessHours{
		BusinessID:  businessID(c),
		StartHour:   req.StartHour,
		EndHour:     req.EndHour,
		StepMinutes: req.StepMinutes,
	}

	if err := h.catalog.SaveBusinessHours(c.Request.Context(), &hours); err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_save_hours", "Could not save business hours.")
		return
	}

	httpresp.OK(c, hours)
}
