package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/dto"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// ======================================================
// By date
// ======================================================

type ListAppointmentsByDate struct {
	tenants  TenantOpener
	settings Settings
}

func NewListAppointmentsByDate(tenants TenantOpener, settings Settings) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{tenants: tenants, settings: settings.withDefaults()}
}

// Execute accepts any supported date layout and lists that day's bookings in
// start time order.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	businessID string,
	rawDate string,
) ([]dto.AppointmentListDTO, error) {

	date, err := isoDate(rawDate, uc.settings.Location)
	if err != nil {
		return nil, err
	}

	tenant, err := uc.tenants.Open(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return toListDTOs(tenant.Appointments.ByDate(date), uc.settings), nil
}

// ======================================================
// Upcoming
// ======================================================

type ListUpcomingAppointments struct {
	tenants  TenantOpener
	settings Settings
}

func NewListUpcomingAppointments(tenants TenantOpener, settings Settings) *ListUpcomingAppointments {
	return &ListUpcomingAppointments{tenants: tenants, settings: settings.withDefaults()}
}

// Execute returns at most limit upcoming appointments (all when limit <= 0).
func (uc *ListUpcomingAppointments) Execute(
	ctx context.Context,
	businessID string,
	limit int,
) ([]dto.AppointmentListDTO, error) {

	tenant, err := uc.tenants.Open(ctx, businessID)
	if err != nil {
		return nil, err
	}

	upcoming := tenant.Appointments.Upcoming()
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return toListDTOs(upcoming, uc.settings), nil
}

// ======================================================
// By client
// ======================================================

type ListClientAppointments struct {
	tenants  TenantOpener
	settings Settings
}

func NewListClientAppointments(tenants TenantOpener, settings Settings) *ListClientAppointments {
	return &ListClientAppointments{tenants: tenants, settings: settings.withDefaults()}
}

func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	businessID string,
	clientID string,
) (*dto.ClientAppointmentsDTO, error) {

	tenant, err := uc.tenants.Open(ctx, businessID)
	if err != nil {
		return nil, err
	}

	history := tenant.Appointments.ByClient(clientID)
	client := models.Client{ID: clientID}

	now := uc.settings.Clock().UnixMilli()
	var lastVisit int64

	for _, ap := range history {
		if ap.ClientName != "" {
			client.Name = ap.ClientName
		}

		ts, err := timeutil.ToTimestamp(ap.Date, ap.StartTime, uc.settings.Location)
		if err != nil {
			continue
		}
		if domain.Status(ap.Status) == domain.StatusCompleted && ts <= now && ts > lastVisit {
			lastVisit = ts
			client.LastVisit = ap.Date
		}
	}

	for _, ap := range tenant.Appointments.Upcoming() {
		if ap.ClientID == clientID {
			client.UpcomingAppointmentID = ap.ID
			break
		}
	}

	return &dto.ClientAppointmentsDTO{
		Client:       client,
		Appointments: toListDTOs(history, uc.settings),
	}, nil
}

func toListDTOs(appts []models.Appointment, settings Settings) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appts))
	for _, ap := range appts {
		var ts *int64
		if v, err := timeutil.ToTimestamp(ap.Date, ap.StartTime, settings.Location); err == nil {
			ts = &v
		}
		out = append(out, dto.NewAppointmentListDTO(ap, ts))
	}
	return out
}
