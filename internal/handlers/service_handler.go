package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/repository"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ServiceHandler struct {
	catalog *repository.CatalogGormRepository
}

func NewServiceHandler(catalog *repository.CatalogGormRepository) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min" binding:"required"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ======================================================
// LIST
// ======================================================

func (h *ServiceHandler) List(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") != "false"

	services, err := h.catalog.ListServices(c.Request.Context(), businessID(c), onlyActive)
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	httpresp.List(c, services)
}

// ======================================================
// CREATE
// ======================================================

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httperr.BadRequest(c, "name_required", "Service name is required.")
		return
	}
	if req.DurationMin <= 0 || req.DurationMin > 24*60 {
		httperr.BadRequest(c, "invalid_duration", "Duration must be between 1 and 1440 minutes.")
		return
	}
	if req.Price < 0 {
		httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
		return
	}

	svc := models.Service{
		BusinessID:  businessID(c),
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Category:    req.Category,
		Active:      true,
	}

	if err := h.catalog.CreateService(c.Request.Context(), &svc); err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "failed_to_create_service", "Could not create service.")
		return
	}

	httpresp.Created(c, svc)
}
