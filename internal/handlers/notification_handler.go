package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
	"github.com/BruksfildServices01/agenda-engine/internal/store"
	ucAppointment "github.com/BruksfildServices01/agenda-engine/internal/usecase/appointment"
)

type NotificationHandler struct {
	tenants ucAppointment.TenantOpener
}

func NewNotificationHandler(tenants ucAppointment.TenantOpener) *NotificationHandler {
	return &NotificationHandler{tenants: tenants}
}

func (h *NotificationHandler) notifications(c *gin.Context) (*store.NotificationStore, bool) {
	tenant, err := h.tenants.Open(c.Request.Context(), businessID(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return tenant.Notifications, true
}

func (h *NotificationHandler) List(c *gin.Context) {
	n, ok := h.notifications(c)
	if !ok {
		return
	}
	httpresp.List(c, n.List())
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, ok := h.notifications(c)
	if !ok {
		return
	}
	httpresp.OK(c, gin.H{"unread": n.UnreadCount()})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, ok := h.notifications(c)
	if !ok {
		return
	}
	if err := n.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, ok := h.notifications(c)
	if !ok {
		return
	}
	n.MarkAllRead(c.Request.Context())
	httpresp.NoContent(c)
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	n, ok := h.notifications(c)
	if !ok {
		return
	}
	n.Clear(c.Request.Context())
	httpresp.NoContent(c)
}
