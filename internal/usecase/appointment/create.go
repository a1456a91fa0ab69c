package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/httperr"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BusinessID string
	UserID     string

	ClientID   string
	ClientName string

	// ServiceID is resolved through the catalog. Without one, ServiceName
	// and DurationMin describe an ad hoc service.
	ServiceID   string
	ServiceName string
	DurationMin int

	Date      string
	StartTime string
	Notes     string

	BookingSource string
	Status        domain.Status
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	tenants  TenantOpener
	services domain.ServiceLookup
	audit    AuditSink
	settings Settings
}

func NewCreateAppointment(
	tenants TenantOpener,
	services domain.ServiceLookup,
	audit AuditSink,
	settings Settings,
) *CreateAppointment {
	return &CreateAppointment{
		tenants:  tenants,
		services: services,
		audit:    auditOrNop(audit),
		settings: settings.withDefaults(),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (models.Appointment, error) {

	// --------------------------------------------------
	// Client
	// --------------------------------------------------
	in.ClientName = strings.TrimSpace(in.ClientName)
	if in.ClientName == "" {
		return models.Appointment{}, httperr.ErrBusiness("client_name_required")
	}

	// --------------------------------------------------
	// Date / time
	// --------------------------------------------------
	date, err := isoDate(in.Date, uc.settings.Location)
	if err != nil {
		return models.Appointment{}, err
	}
	startMin, err := timeutil.ToMinutes(in.StartTime)
	if err != nil {
		return models.Appointment{}, err
	}
	start := timeutil.FormatMinutes(startMin)

	// --------------------------------------------------
	// Service
	// --------------------------------------------------
	name, price, duration, err := uc.resolveService(ctx, in)
	if err != nil {
		return models.Appointment{}, err
	}

	end, err := domain.EndTimeFor(start, duration)
	if err != nil {
		return models.Appointment{}, err
	}

	// --------------------------------------------------
	// Status / source
	// --------------------------------------------------
	status := in.Status
	if status == "" {
		status = domain.InitialStatus()
	}
	if !status.IsValid() || status.IsTerminal() {
		return models.Appointment{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	source := in.BookingSource
	switch source {
	case "":
		source = domain.BookingSourceManual
	case domain.BookingSourceManual, domain.BookingSourceOnline:
	case domain.BookingSourceRequest:
		// converted booking requests still wait for the business to accept
		status = domain.StatusPending
	default:
		return models.Appointment{}, httperr.ErrBusiness("invalid_booking_source")
	}

	tenant, err := uc.tenants.Open(ctx, in.BusinessID)
	if err != nil {
		return models.Appointment{}, err
	}

	// --------------------------------------------------
	// Store
	// --------------------------------------------------
	ap := models.Appointment{
		BusinessID:    in.BusinessID,
		ClientID:      in.ClientID,
		ClientName:    in.ClientName,
		ServiceID:     in.ServiceID,
		ServiceName:   name,
		ServicePrice:  price,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Status:        string(status),
		Notes:         in.Notes,
		BookingSource: source,
	}
	if err := domain.Validate(ap); err != nil {
		return models.Appointment{}, err
	}

	// overlap is checked inside the store's write lock
	saved, err := tenant.Appointments.AddIfFree(ctx, ap)
	if err != nil {
		return models.Appointment{}, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   saved.ID,
		Metadata:   map[string]string{"source": source, "date": date, "start_time": start},
	})

	return saved, nil
}

func (uc *CreateAppointment) resolveService(
	ctx context.Context,
	in CreateAppointmentInput,
) (string, float64, int, error) {

	if in.ServiceID == "" {
		duration := in.DurationMin
		if duration <= 0 {
			duration = uc.settings.ServiceMinutes
		}
		return strings.TrimSpace(in.ServiceName), 0, duration, nil
	}

	if uc.services == nil {
		return "", 0, 0, domain.ErrServiceNotFound
	}

	svc, found, err := uc.services.GetServiceByID(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return "", 0, 0, fmt.Errorf("looking up service %s: %w", in.ServiceID, err)
	}
	if !found {
		return "", 0, 0, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, in.ServiceID)
	}

	duration := svc.DurationMin
	if duration <= 0 {
		duration = uc.settings.ServiceMinutes
	}
	return svc.Name, svc.Price, duration, nil
}
