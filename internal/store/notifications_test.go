package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

func newNotificationStore(backend kv.Store, limit int) *NotificationStore {
	clock := fixedClock(time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	return NewNotificationStore("notifications:biz-1", backend, limit, clock, nil)
}

func event(kind, id string) domain.NotificationEvent {
	return domain.NotificationEvent{
		Type:          kind,
		AppointmentID: id,
		ClientName:    "Ana",
		ServiceName:   "Haircut",
		Date:          "2025-03-01",
		StartTime:     "10:00",
	}
}

func TestNotify_NewestFirstAndUnread(t *testing.T) {
	n := newNotificationStore(kv.NewMemory(), 0)
	ctx := context.Background()

	n.Notify(ctx, event(models.NotificationNewAppointment, "a1"))
	n.Notify(ctx, event(models.NotificationAppointmentCancelled, "a1"))

	list := n.List()
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationAppointmentCancelled, list[0].Type)
	assert.Equal(t, "Appointment cancelled", list[0].Title)
	assert.Contains(t, list[0].Message, "Ana")
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, 2, n.UnreadCount())
}

func TestMarkRead(t *testing.T) {
	n := newNotificationStore(kv.NewMemory(), 0)
	ctx := context.Background()

	n.Notify(ctx, event(models.NotificationNewAppointment, "a1"))
	n.Notify(ctx, event(models.NotificationNewAppointment, "a2"))

	id := n.List()[0].ID
	require.NoError(t, n.MarkRead(ctx, id))
	assert.Equal(t, 1, n.UnreadCount())

	assert.ErrorIs(t, n.MarkRead(ctx, "missing"), domain.ErrNotificationNotFound)

	n.MarkAllRead(ctx)
	assert.Zero(t, n.UnreadCount())

	n.Clear(ctx)
	assert.Empty(t, n.List())
}

func TestNotify_CapsCollection(t *testing.T) {
	n := newNotificationStore(kv.NewMemory(), 3)
	ctx := context.Background()

	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		n.Notify(ctx, event(models.NotificationNewAppointment, id))
	}

	list := n.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a4", list[0].AppointmentID)
	assert.Equal(t, "a2", list[2].AppointmentID)
}

func TestNotifications_PersistAcrossReload(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()

	n := newNotificationStore(backend, 0)
	n.Notify(ctx, event(models.NotificationNewAppointment, "a1"))

	reloaded := newNotificationStore(backend, 0)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 1, reloaded.UnreadCount())
}

func TestRegistry_OpenOncePerBusiness(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()

	r := NewRegistry(backend, RegistryOptions{Location: time.UTC})

	t1, err := r.Open(ctx, "biz-1")
	require.NoError(t, err)
	again, err := r.Open(ctx, "biz-1")
	require.NoError(t, err)
	other, err := r.Open(ctx, "biz-2")
	require.NoError(t, err)

	assert.Same(t, t1, again)
	assert.NotSame(t, t1, other)

	_, err = t1.Appointments.Add(ctx, booking("a1", "2025-03-01", "10:00", "10:30"))
	require.NoError(t, err)

	assert.Equal(t, 1, t1.Notifications.UnreadCount(), "store notifies its own business")
	assert.Zero(t, other.Notifications.UnreadCount())
	assert.Empty(t, other.Appointments.All())

	data, err := backend.Load(ctx, AppointmentsKey("biz-1"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"a1"`)
}
