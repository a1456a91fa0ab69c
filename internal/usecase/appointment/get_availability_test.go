package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

func slotMap(res *domain.AvailabilityResult) map[string]domain.Slot {
	out := make(map[string]domain.Slot, len(res.Slots))
	for _, s := range res.Slots {
		out[s.Time] = s
	}
	return out
}

func TestGetAvailability_ConcreteScenario(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:45", domain.StatusConfirmed))

	services := fakeServices{services: map[string]models.Service{
		"quick": {ID: "quick", BusinessID: bizID, Name: "Quick trim", DurationMin: 30},
	}}
	uc := NewGetAvailability(r, services, nil, testSettings())

	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		BusinessID: bizID,
		Date:       "2025-03-01",
		ServiceID:  "quick",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", res.Date)
	assert.Equal(t, 30, res.ServiceDuration)
	require.Len(t, res.Slots, 18)

	slots := slotMap(res)
	assert.True(t, slots["09:30"].Available)
	assert.False(t, slots["10:00"].Available)
	assert.Equal(t, "a1", slots["10:00"].ConflictingAppointmentID)
	assert.False(t, slots["10:30"].Available)
	assert.True(t, slots["11:00"].Available)
}

func TestGetAvailability_SlotsInGeneratorOrder(t *testing.T) {
	uc := NewGetAvailability(newRegistry(), nil, nil, testSettings())

	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01"})
	require.NoError(t, err)

	prev := -1
	for _, s := range res.Slots {
		m, err := timeutil.ToMinutes(s.Time)
		require.NoError(t, err)
		assert.Greater(t, m, prev)
		prev = m
	}
}

func TestGetAvailability_DefaultDurationIs60(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:45", domain.StatusConfirmed))

	uc := NewGetAvailability(r, fakeServices{}, nil, testSettings())

	for _, serviceID := range []string{"", "deleted-service"} {
		res, err := uc.Execute(context.Background(), domain.AvailabilityInput{
			BusinessID: bizID,
			Date:       "2025-03-01",
			ServiceID:  serviceID,
		})
		require.NoError(t, err)
		assert.Equal(t, 60, res.ServiceDuration, "service %q", serviceID)

		slots := slotMap(res)
		assert.True(t, slots["09:00"].Available, "09:00-10:00 touches but does not overlap")
		assert.False(t, slots["09:30"].Available, "09:30-10:30 overlaps")
		assert.True(t, slots["11:00"].Available)
	}
}

func TestGetAvailability_CancelledDoesNotBlock(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("c1", "2025-03-01", "10:00", "11:00", domain.StatusCancelled))

	res, err := NewGetAvailability(r, nil, nil, testSettings()).
		Execute(context.Background(), domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01"})
	require.NoError(t, err)

	for _, s := range res.Slots {
		assert.True(t, s.Available, s.Time)
	}
}

func TestGetAvailability_UsesBusinessHours(t *testing.T) {
	hours := fakeHours{hours: &models.BusinessHours{BusinessID: bizID, StartHour: 8, EndHour: 10, StepMinutes: 60}}
	uc := NewGetAvailability(newRegistry(), nil, hours, testSettings())

	res, err := uc.Execute(context.Background(), domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01"})
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, "08:00", res.Slots[0].Time)
	assert.Equal(t, "09:00", res.Slots[1].Time)
}

func TestGetAvailability_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewGetAvailability(newRegistry(), nil, nil, testSettings()).
		Execute(ctx, domain.AvailabilityInput{BusinessID: bizID, Date: "01/03/2025"})
	assert.ErrorIs(t, err, timeutil.ErrInvalidDateFormat)

	lookupErr := errors.New("db down")
	_, err = NewGetAvailability(newRegistry(), fakeServices{err: lookupErr}, nil, testSettings()).
		Execute(ctx, domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01", ServiceID: "x"})
	assert.ErrorIs(t, err, lookupErr)

	_, err = NewGetAvailability(newRegistry(), nil, fakeHours{err: lookupErr}, testSettings()).
		Execute(ctx, domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01"})
	assert.ErrorIs(t, err, lookupErr)
}

func TestGetAvailability_HasNoSideEffects(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:45", domain.StatusConfirmed))
	uc := NewGetAvailability(r, nil, nil, testSettings())

	in := domain.AvailabilityInput{BusinessID: bizID, Date: "2025-03-01"}
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, openTenant(t, r).Appointments.All(), 1)
	assert.Equal(t, []string{models.NotificationNewAppointment}, notificationTypes(t, r))
}
