package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// Tenant bundles the collections of one business.
type Tenant struct {
	Appointments  *AppointmentStore
	Notifications *NotificationStore
}

type RegistryOptions struct {
	Location          *time.Location
	Clock             timeutil.Clock
	NotificationLimit int
	Logger            *zap.Logger
}

// Registry opens each business's collections once and hands the same
// instances to every caller afterwards.
type Registry struct {
	kv   kv.Store
	opts RegistryOptions

	mu      sync.Mutex
	tenants map[string]*Tenant
}

func NewRegistry(store kv.Store, opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.SystemClock
	}
	if opts.Location == nil {
		opts.Location = timeutil.Location(timeutil.DefaultTimezone)
	}
	return &Registry{
		kv:      store,
		opts:    opts,
		tenants: make(map[string]*Tenant),
	}
}

func AppointmentsKey(businessID string) string  { return "appointments:" + businessID }
func NotificationsKey(businessID string) string { return "notifications:" + businessID }

// Open returns the business's collections, loading them from the kv store on
// first use. A failed load is not cached.
func (r *Registry) Open(ctx context.Context, businessID string) (*Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tenants[businessID]; ok {
		return t, nil
	}

	log := r.opts.Logger.With(zap.String("business_id", businessID))

	notifications := NewNotificationStore(
		NotificationsKey(businessID),
		r.kv,
		r.opts.NotificationLimit,
		r.opts.Clock,
		log,
	)
	if err := notifications.Load(ctx); err != nil {
		return nil, err
	}

	appointments := NewAppointmentStore(
		AppointmentsKey(businessID),
		r.kv,
		notifications,
		r.opts.Location,
		r.opts.Clock,
		log,
	)
	if err := appointments.Load(ctx); err != nil {
		return nil, err
	}

	t := &Tenant{Appointments: appointments, Notifications: notifications}
	r.tenants[businessID] = t

	log.Info("business collections loaded",
		zap.Int("appointments", len(appointments.All())),
		zap.Int("notifications", len(notifications.List())),
	)
	return t, nil
}
