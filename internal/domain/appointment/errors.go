package appointment

import (
	"errors"

	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

var (
	ErrNotFound             = httperr.ErrBusiness("appointment_not_found")
	ErrAlreadyExists        = httperr.ErrBusiness("appointment_exists")
	ErrServiceNotFound      = httperr.ErrBusiness("service_not_found")
	ErrTimeConflict         = httperr.ErrBusiness("time_conflict")
	ErrInvalidStatus        = httperr.ErrBusiness("invalid_status")
	ErrInvalidTimeRange     = httperr.ErrBusiness("invalid_time_range")
	ErrUnauthenticated      = httperr.ErrBusiness("not_authenticated")
	ErrMutationInFlight     = httperr.ErrBusiness("mutation_in_flight")
	ErrNotificationNotFound = httperr.ErrBusiness("notification_not_found")
)

const genericRejectMessage = "The server could not apply the change. Please try again."

// RemoteRejectedError means the remote call completed (or could not complete)
// without applying the change.
type RemoteRejectedError struct {
	StatusCode int
	Reason     string
	Cause      error
}

func (e *RemoteRejectedError) Error() string {
	if e.Reason != "" {
		return "remote rejected the change: " + e.Reason
	}
	if e.Cause != nil {
		return "remote rejected the change: " + e.Cause.Error()
	}
	return "remote rejected the change"
}

func (e *RemoteRejectedError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the person who attempted the change.
func (e *RemoteRejectedError) UserMessage() string {
	if e.Reason != "" {
		return e.Reason
	}
	return genericRejectMessage
}

// IsFormatError reports parse failures of dates or clock times.
func IsFormatError(err error) bool {
	return errors.Is(err, timeutil.ErrInvalidDateFormat) || errors.Is(err, timeutil.ErrInvalidTimeFormat)
}
