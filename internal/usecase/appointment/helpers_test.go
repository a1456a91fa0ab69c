package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/store"
)

const bizID = "biz-1"

// 2025-01-10 12:00 UTC
var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func testSettings() Settings {
	s := DefaultSettings()
	s.Location = time.UTC
	s.Clock = func() time.Time { return testNow }
	s.RemoteTimeout = time.Second
	return s
}

func newRegistry() *store.Registry {
	return store.NewRegistry(kv.NewMemory(), store.RegistryOptions{
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
	})
}

func openTenant(t *testing.T, r *store.Registry) *store.Tenant {
	t.Helper()
	tenant, err := r.Open(context.Background(), bizID)
	require.NoError(t, err)
	return tenant
}

func seed(t *testing.T, r *store.Registry, aps ...models.Appointment) {
	t.Helper()
	tenant := openTenant(t, r)
	for _, ap := range aps {
		_, err := tenant.Appointments.Add(context.Background(), ap)
		require.NoError(t, err)
	}
}

func appt(id, date, start, end string, status domain.Status) models.Appointment {
	return models.Appointment{
		ID:          id,
		BusinessID:  bizID,
		ClientID:    "client-1",
		ClientName:  "Ana",
		ServiceName: "Haircut",
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Status:      string(status),
	}
}

func notificationTypes(t *testing.T, r *store.Registry) []string {
	t.Helper()
	list := openTenant(t, r).Notifications.List()
	out := make([]string, len(list))
	// stored newest first
	for i, n := range list {
		out[len(list)-1-i] = n.Type
	}
	return out
}

// ===============================
// Fakes
// ===============================

type fakeServices struct {
	services map[string]models.Service
	err      error
}

func (f fakeServices) GetServiceByID(_ context.Context, businessID, serviceID string) (*models.Service, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	svc, ok := f.services[serviceID]
	if !ok || svc.BusinessID != businessID {
		return nil, false, nil
	}
	return &svc, true, nil
}

type fakeHours struct {
	hours *models.BusinessHours
	err   error
}

func (f fakeHours) GetBusinessHours(context.Context, string) (*models.BusinessHours, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.hours, f.hours != nil, nil
}

type fakeRemote struct {
	mu    sync.Mutex
	calls int
	token string
	ctx   context.Context
	err   error

	// when set, UpdateStatus blocks until released
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRemote) UpdateStatus(ctx context.Context, _ string, _ domain.Status, token string) error {
	f.mu.Lock()
	f.calls++
	f.token = token
	f.ctx = ctx
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.err
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

var errBackendDown = errors.New("backend down")
