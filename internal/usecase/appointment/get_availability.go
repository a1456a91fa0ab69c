package appointment

import (
	"context"
	"fmt"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

type GetAvailability struct {
	tenants  TenantOpener
	services domain.ServiceLookup
	hours    domain.BusinessHoursLookup
	settings Settings
}

func NewGetAvailability(
	tenants TenantOpener,
	services domain.ServiceLookup,
	hours domain.BusinessHoursLookup,
	settings Settings,
) *GetAvailability {
	return &GetAvailability{
		tenants:  tenants,
		services: services,
		hours:    hours,
		settings: settings.withDefaults(),
	}
}

// Execute annotates every slot of the business day with its availability for
// the requested service. A missing or unknown service is booked for the
// default duration.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.AvailabilityResult, error) {

	if _, err := timeutil.ParseISODate(in.Date, uc.settings.Location); err != nil {
		return nil, err
	}

	duration, err := uc.serviceDuration(ctx, in)
	if err != nil {
		return nil, err
	}

	hours, step, err := uc.businessHours(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	tenant, err := uc.tenants.Open(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}
	appts := tenant.Appointments.ByDate(in.Date)

	starts := domain.GenerateSlots(hours, step)
	slots := make([]domain.Slot, 0, len(starts))

	for _, start := range starts {
		startMin, _ := timeutil.ToMinutes(start)
		check := domain.IsSlotAvailable(startMin, duration, appts)

		slots = append(slots, domain.Slot{
			Time:                     start,
			Available:                check.Available,
			ConflictingAppointmentID: check.ConflictingID,
		})
	}

	return &domain.AvailabilityResult{
		Date:            in.Date,
		ServiceDuration: duration,
		Slots:           slots,
	}, nil
}

func (uc *GetAvailability) serviceDuration(ctx context.Context, in domain.AvailabilityInput) (int, error) {
	if in.ServiceID == "" || uc.services == nil {
		return uc.settings.ServiceMinutes, nil
	}

	svc, found, err := uc.services.GetServiceByID(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return 0, fmt.Errorf("looking up service %s: %w", in.ServiceID, err)
	}
	if !found || svc.DurationMin <= 0 {
		return uc.settings.ServiceMinutes, nil
	}
	return svc.DurationMin, nil
}

func (uc *GetAvailability) businessHours(ctx context.Context, businessID string) (domain.BusinessHours, int, error) {
	hours, step := uc.settings.Hours, uc.settings.StepMinutes
	if uc.hours == nil {
		return hours, step, nil
	}

	bh, found, err := uc.hours.GetBusinessHours(ctx, businessID)
	if err != nil {
		return hours, step, fmt.Errorf("looking up business hours: %w", err)
	}
	if !found || bh.EndHour <= bh.StartHour {
		return hours, step, nil
	}

	hours = domain.BusinessHours{StartHour: bh.StartHour, EndHour: bh.EndHour}
	if bh.StepMinutes > 0 {
		step = bh.StepMinutes
	}
	return hours, step, nil
}
