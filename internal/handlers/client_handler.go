package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agenda-engine/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/agenda-engine/internal/usecase/appointment"
)

type ClientHandler struct {
	listClientAppointments *ucAppointment.ListClientAppointments
}

func NewClientHandler(listClientAppointments *ucAppointment.ListClientAppointments) *ClientHandler {
	return &ClientHandler{listClientAppointments: listClientAppointments}
}

func (h *ClientHandler) Appointments(c *gin.Context) {
	res, err := h.listClientAppointments.Execute(c.Request.Context(), businessID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, res)
}
