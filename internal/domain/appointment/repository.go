package appointment

import (
	"context"

	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

// Collaborators the engine consumes. Implementations live under internal/infra
// and internal/credentials.

// ServiceLookup resolves bookable services. A missing service is reported as
// found == false, not as an error.
type ServiceLookup interface {
	GetServiceByID(
		ctx context.Context,
		businessID string,
		serviceID string,
	) (*models.Service, bool, error)
}

type BusinessHoursLookup interface {
	GetBusinessHours(
		ctx context.Context,
		businessID string,
	) (*models.BusinessHours, bool, error)
}

type CredentialProvider interface {
	AuthToken(ctx context.Context) (string, bool)
}

// RemoteAppointmentAPI applies a status change on the backend. It is
// idempotent by appointment id. Implementations return an error wrapping
// ErrUnauthenticated when the backend refuses the credential and a
// *RemoteRejectedError for every other failure.
type RemoteAppointmentAPI interface {
	UpdateStatus(
		ctx context.Context,
		appointmentID string,
		status Status,
		token string,
	) error
}

// NotificationEvent describes an appointment change worth telling the
// business about.
type NotificationEvent struct {
	Type          string
	AppointmentID string
	ClientName    string
	ServiceName   string
	Date          string
	StartTime     string
}

type NotificationSink interface {
	Notify(ctx context.Context, ev NotificationEvent)
}
