package appointment

import (
	"context"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

type RemoveAppointment struct {
	tenants TenantOpener
	audit   AuditSink
}

func NewRemoveAppointment(tenants TenantOpener, audit AuditSink) *RemoveAppointment {
	return &RemoveAppointment{tenants: tenants, audit: auditOrNop(audit)}
}

func (uc *RemoveAppointment) Execute(
	ctx context.Context,
	businessID string,
	userID string,
	appointmentID string,
) (models.Appointment, error) {

	tenant, err := uc.tenants.Open(ctx, businessID)
	if err != nil {
		return models.Appointment{}, err
	}

	removed, err := tenant.Appointments.Remove(ctx, appointmentID)
	if err != nil {
		return models.Appointment{}, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     userID,
		Action:     "appointment_removed",
		Entity:     "appointment",
		EntityID:   appointmentID,
		Metadata:   map[string]string{"date": removed.Date, "start_time": removed.StartTime},
	})

	return removed, nil
}
