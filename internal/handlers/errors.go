package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/middleware"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

var messages = map[error]string{
	domain.ErrNotFound:             "Appointment not found.",
	domain.ErrAlreadyExists:        "An appointment with this id already exists.",
	domain.ErrServiceNotFound:      "Service not found.",
	domain.ErrTimeConflict:         "This time overlaps another appointment.",
	domain.ErrInvalidStatus:        "Unknown appointment status.",
	domain.ErrInvalidTimeRange:     "The appointment must end after it starts and before midnight.",
	domain.ErrUnauthenticated:      "You are not signed in to the booking backend.",
	domain.ErrMutationInFlight:     "Another change to this appointment is still in progress.",
	domain.ErrNotificationNotFound: "Notification not found.",
}

var statuses = map[error]int{
	domain.ErrNotFound:             http.StatusNotFound,
	domain.ErrServiceNotFound:      http.StatusNotFound,
	domain.ErrNotificationNotFound: http.StatusNotFound,
	domain.ErrAlreadyExists:        http.StatusConflict,
	domain.ErrTimeConflict:         http.StatusConflict,
	domain.ErrMutationInFlight:     http.StatusConflict,
	domain.ErrUnauthenticated:      http.StatusUnauthorized,
}

// writeError maps use case errors onto the JSON error envelope.
func writeError(c *gin.Context, err error) {
	var rejected *domain.RemoteRejectedError
	if errors.As(err, &rejected) {
		httperr.BadGateway(c, "remote_rejected", rejected.UserMessage())
		return
	}

	switch {
	case errors.Is(err, timeutil.ErrInvalidDateFormat):
		httperr.BadRequest(c, "invalid_date_format", "Invalid date.")
		return
	case errors.Is(err, timeutil.ErrInvalidTimeFormat):
		httperr.BadRequest(c, "invalid_time_format", "Invalid time. Use HH:MM.")
		return
	}

	for sentinel, status := range statuses {
		if errors.Is(err, sentinel) {
			code, _ := httperr.Code(sentinel)
			httperr.Write(c, status, code, messages[sentinel])
			return
		}
	}

	if code, ok := httperr.Code(err); ok {
		msg := messages[httperr.ErrBusiness(code)]
		if msg == "" {
			msg = "Invalid request."
		}
		httperr.BadRequest(c, code, msg)
		return
	}

	_ = c.Error(err)
	httperr.Internal(c, "internal_error", "Something went wrong.")
}

func businessID(c *gin.Context) string {
	return c.GetString(middleware.ContextBusinessID)
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
