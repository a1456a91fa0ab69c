package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

const DefaultNotificationLimit = 100

// NotificationStore is the business's notification collection. It is the
// NotificationSink handed to the appointment store.
type NotificationStore struct {
	mu    sync.RWMutex
	items []models.AppNotification // newest first

	key   string
	kv    kv.Store
	limit int
	clock timeutil.Clock
	log   *zap.Logger

	persistMu sync.Mutex
}

func NewNotificationStore(
	key string,
	store kv.Store,
	limit int,
	clock timeutil.Clock,
	log *zap.Logger,
) *NotificationStore {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationStore{
		key:   key,
		kv:    store,
		limit: limit,
		clock: clock,
		log:   log,
	}
}

// Load replaces the in-memory collection with the persisted one.
func (s *NotificationStore) Load(ctx context.Context) error {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("loading notifications: %w", err)
	}

	var items []models.AppNotification
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding notifications: %w", err)
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *NotificationStore) Notify(ctx context.Context, ev domain.NotificationEvent) {
	n := models.AppNotification{
		ID:            uuid.NewString(),
		Type:          ev.Type,
		Title:         notificationTitle(ev.Type),
		Message:       notificationMessage(ev),
		ClientName:    ev.ClientName,
		AppointmentID: ev.AppointmentID,
		Timestamp:     s.clock().UTC(),
	}

	s.mu.Lock()
	s.items = append([]models.AppNotification{n}, s.items...)
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	s.mu.Unlock()

	s.persist(ctx)
}

func (s *NotificationStore) List() []models.AppNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AppNotification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, it := range s.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return domain.ErrNotificationNotFound
	}
	s.persist(ctx)
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.mu.Unlock()

	s.persist(ctx)
}

func (s *NotificationStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.persist(ctx)
}

func (s *NotificationStore) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	data, err := json.Marshal(s.items)
	s.mu.RUnlock()
	if err != nil {
		s.log.Error("encoding notifications", zap.String("key", s.key), zap.Error(err))
		return
	}

	if err := s.kv.Save(ctx, s.key, data); err != nil {
		s.log.Error("persisting notifications", zap.String("key", s.key), zap.Error(err))
	}
}

func notificationTitle(kind string) string {
	switch kind {
	case models.NotificationNewAppointment:
		return "New appointment"
	case models.NotificationAppointmentCancelled:
		return "Appointment cancelled"
	default:
		return "Appointment changed"
	}
}

func notificationMessage(ev domain.NotificationEvent) string {
	when := ev.Date
	if ev.StartTime != "" {
		when += " " + ev.StartTime
	}

	switch ev.Type {
	case models.NotificationNewAppointment:
		return fmt.Sprintf("%s booked %s for %s", ev.ClientName, ev.ServiceName, when)
	case models.NotificationAppointmentCancelled:
		return fmt.Sprintf("%s's %s on %s was cancelled", ev.ClientName, ev.ServiceName, when)
	default:
		return fmt.Sprintf("%s's %s is now on %s", ev.ClientName, ev.ServiceName, when)
	}
}

var _ domain.NotificationSink = (*NotificationStore)(nil)
