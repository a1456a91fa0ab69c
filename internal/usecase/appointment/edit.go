package appointment

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// EditAppointmentInput carries the fields to change. Nil means unchanged.
// Status changes go through ChangeStatus.
type EditAppointmentInput struct {
	BusinessID    string
	UserID        string
	AppointmentID string

	ClientName *string
	ServiceID  *string
	Date       *string
	StartTime  *string
	Notes      *string
}

type EditAppointment struct {
	tenants  TenantOpener
	services domain.ServiceLookup
	audit    AuditSink
	settings Settings
}

func NewEditAppointment(
	tenants TenantOpener,
	services domain.ServiceLookup,
	audit AuditSink,
	settings Settings,
) *EditAppointment {
	return &EditAppointment{
		tenants:  tenants,
		services: services,
		audit:    auditOrNop(audit),
		settings: settings.withDefaults(),
	}
}

func (uc *EditAppointment) Execute(
	ctx context.Context,
	in EditAppointmentInput,
) (models.Appointment, error) {

	tenant, err := uc.tenants.Open(ctx, in.BusinessID)
	if err != nil {
		return models.Appointment{}, err
	}

	current, ok := tenant.Appointments.Get(in.AppointmentID)
	if !ok {
		return models.Appointment{}, fmt.Errorf("%w: %s", domain.ErrNotFound, in.AppointmentID)
	}

	next := current
	patch := models.AppointmentPatch{ClientName: in.ClientName, Notes: in.Notes}

	// keep the booked length unless the service changes
	duration := uc.settings.ServiceMinutes
	if s, e, err := domain.Span(current); err == nil && e > s {
		duration = e - s
	}

	if in.ServiceID != nil && *in.ServiceID != current.ServiceID {
		svc, found, err := uc.lookup(ctx, in.BusinessID, *in.ServiceID)
		if err != nil {
			return models.Appointment{}, err
		}
		if !found {
			return models.Appointment{}, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, *in.ServiceID)
		}
		if svc.DurationMin > 0 {
			duration = svc.DurationMin
		}
		patch.ServiceID = &svc.ID
		patch.ServiceName = &svc.Name
		patch.ServicePrice = &svc.Price
	}

	if in.Date != nil {
		date, err := isoDate(*in.Date, uc.settings.Location)
		if err != nil {
			return models.Appointment{}, err
		}
		patch.Date = &date
	}

	if in.StartTime != nil {
		m, err := timeutil.ToMinutes(*in.StartTime)
		if err != nil {
			return models.Appointment{}, err
		}
		start := timeutil.FormatMinutes(m)
		patch.StartTime = &start
	}

	rescheduled := patch.Date != nil || patch.StartTime != nil || patch.ServiceID != nil
	if rescheduled {
		patch.Apply(&next)

		end, err := domain.EndTimeFor(next.StartTime, duration)
		if err != nil {
			return models.Appointment{}, err
		}
		patch.EndTime = &end
		next.EndTime = end

		if err := domain.Validate(next); err != nil {
			return models.Appointment{}, err
		}
	}

	update := tenant.Appointments.Update
	if rescheduled {
		update = tenant.Appointments.UpdateIfFree
	}
	updated, err := update(ctx, in.AppointmentID, patch)
	if err != nil {
		return models.Appointment{}, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     "appointment_updated",
		Entity:     "appointment",
		EntityID:   updated.ID,
		Metadata: map[string]string{
			"date":       updated.Date,
			"start_time": updated.StartTime,
			"end_time":   updated.EndTime,
		},
	})

	return updated, nil
}

func (uc *EditAppointment) lookup(ctx context.Context, businessID, serviceID string) (*models.Service, bool, error) {
	if uc.services == nil {
		return nil, false, nil
	}
	svc, found, err := uc.services.GetServiceByID(ctx, businessID, serviceID)
	if err != nil {
		return nil, false, fmt.Errorf("looking up service %s: %w", serviceID, err)
	}
	return svc, found, nil
}
