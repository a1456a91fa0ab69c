package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logs *audit.Logger
}

func NewAuditLogsHandler(logs *audit.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	q := audit.Query{
		BusinessID: businessID(c),
		Action:     c.Query("action"),
		Entity:     c.Query("entity"),
		EntityID:   c.Query("entity_id"),
		Page:       page,
		Limit:      limit,
	}

	// --------------------------------------------------
	// Optional date range, "to" is inclusive
	// --------------------------------------------------

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			q.From = from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			q.To = to.Add(24 * time.Hour)
		}
	}

	logs, total, err := h.logs.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	httpresp.Page(c, logs, total, page, limit)
}
