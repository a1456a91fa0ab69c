// Package store holds the per-business appointment and notification
// collections. Each collection is the single source of truth for its business:
// views are computed copies and every write goes through the mutation methods,
// which persist the collection and emit notifications.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// Change is the outcome of an update: the record before and after the patch,
// plus the notification the diff calls for (nil when none).
type Change struct {
	Before models.Appointment
	After  models.Appointment
	Event  *domain.NotificationEvent
}

type AppointmentStore struct {
	mu    sync.RWMutex
	items []models.Appointment

	key   string
	kv    kv.Store
	sink  domain.NotificationSink
	loc   *time.Location
	clock timeutil.Clock
	log   *zap.Logger

	// keeps snapshots reaching the kv store in mutation order
	persistMu sync.Mutex
}

func NewAppointmentStore(
	key string,
	store kv.Store,
	sink domain.NotificationSink,
	loc *time.Location,
	clock timeutil.Clock,
	log *zap.Logger,
) *AppointmentStore {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = timeutil.SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AppointmentStore{
		key:   key,
		kv:    store,
		sink:  sink,
		loc:   loc,
		clock: clock,
		log:   log,
	}
}

// Load replaces the in-memory collection with the persisted one. A missing
// key loads as an empty collection.
func (s *AppointmentStore) Load(ctx context.Context) error {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("loading appointments: %w", err)
	}

	var items []models.Appointment
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding appointments: %w", err)
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// ===============================
// Mutations
// ===============================

func (s *AppointmentStore) Add(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	return s.add(ctx, ap, false)
}

// AddIfFree is Add that also rejects the record with time_conflict when a
// blocking appointment on the same date overlaps it. The check and the append
// share one critical section.
func (s *AppointmentStore) AddIfFree(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	return s.add(ctx, ap, true)
}

func (s *AppointmentStore) add(ctx context.Context, ap models.Appointment, exclusive bool) (models.Appointment, error) {
	if ap.Status == "" {
		ap.Status = string(domain.InitialStatus())
	}
	if !domain.Status(ap.Status).IsValid() {
		return models.Appointment{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, ap.Status)
	}
	if start, end, err := domain.Span(ap); err == nil && start >= end {
		return models.Appointment{}, fmt.Errorf("%w: %s-%s", domain.ErrInvalidTimeRange, ap.StartTime, ap.EndTime)
	}
	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}

	now := s.clock().UTC()
	if ap.CreatedAt.IsZero() {
		ap.CreatedAt = now
	}
	ap.UpdatedAt = now

	s.mu.Lock()
	if s.indexOf(ap.ID) >= 0 {
		s.mu.Unlock()
		return models.Appointment{}, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, ap.ID)
	}
	if exclusive {
		if id, clash := s.conflictLocked(ap); clash {
			s.mu.Unlock()
			return models.Appointment{}, fmt.Errorf("%w: overlaps %s", domain.ErrTimeConflict, id)
		}
	}
	s.items = append(s.items, ap)
	s.mu.Unlock()

	s.persist(ctx)
	s.Emit(ctx, eventFor(models.NotificationNewAppointment, ap))

	return ap, nil
}

// Update merges patch into the appointment and emits the notification its
// diff calls for.
func (s *AppointmentStore) Update(
	ctx context.Context,
	id string,
	patch models.AppointmentPatch,
) (models.Appointment, error) {
	ch, err := s.UpdateSilently(ctx, id, patch)
	if err != nil {
		return models.Appointment{}, err
	}
	s.Emit(ctx, ch.Event)
	return ch.After, nil
}

// UpdateIfFree is Update that rejects the patch with time_conflict when the
// patched record would overlap another blocking appointment.
func (s *AppointmentStore) UpdateIfFree(
	ctx context.Context,
	id string,
	patch models.AppointmentPatch,
) (models.Appointment, error) {
	ch, err := s.update(ctx, id, patch, true)
	if err != nil {
		return models.Appointment{}, err
	}
	s.Emit(ctx, ch.Event)
	return ch.After, nil
}

// UpdateSilently applies and persists the patch like Update but leaves the
// notification to the caller, who passes Change.Event to Emit once the change
// is final.
func (s *AppointmentStore) UpdateSilently(
	ctx context.Context,
	id string,
	patch models.AppointmentPatch,
) (Change, error) {
	return s.update(ctx, id, patch, false)
}

// UpdateSilentlyIfFree combines the conflict guard of UpdateIfFree with the
// deferred notification of UpdateSilently.
func (s *AppointmentStore) UpdateSilentlyIfFree(
	ctx context.Context,
	id string,
	patch models.AppointmentPatch,
) (Change, error) {
	return s.update(ctx, id, patch, true)
}

func (s *AppointmentStore) update(
	ctx context.Context,
	id string,
	patch models.AppointmentPatch,
	exclusive bool,
) (Change, error) {
	if patch.Status != nil && !domain.Status(*patch.Status).IsValid() {
		return Change{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Change{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	before := s.items[i]
	after := before
	patch.Apply(&after)
	if exclusive {
		if other, clash := s.conflictLocked(after); clash {
			s.mu.Unlock()
			return Change{}, fmt.Errorf("%w: overlaps %s", domain.ErrTimeConflict, other)
		}
	}
	after.UpdatedAt = s.clock().UTC()
	s.items[i] = after
	s.mu.Unlock()

	s.persist(ctx)

	return Change{Before: before, After: after, Event: diff(before, after)}, nil
}

// Emit hands ev to the notification sink. A nil event is ignored.
func (s *AppointmentStore) Emit(ctx context.Context, ev *domain.NotificationEvent) {
	if ev == nil || s.sink == nil {
		return
	}
	s.sink.Notify(ctx, *ev)
}

func (s *AppointmentStore) Remove(ctx context.Context, id string) (models.Appointment, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Appointment{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.mu.Unlock()

	s.persist(ctx)
	s.Emit(ctx, eventFor(models.NotificationAppointmentCancelled, removed))

	return removed, nil
}

// ===============================
// Views
// ===============================

func (s *AppointmentStore) Get(id string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Appointment{}, false
	}
	return s.items[i], true
}

func (s *AppointmentStore) All() []models.Appointment {
	return s.filter(func(models.Appointment) bool { return true })
}

// ByDate matches the date field exactly, ordered by start time. Rows whose
// start time does not parse come last.
func (s *AppointmentStore) ByDate(date string) []models.Appointment {
	out := s.filter(func(ap models.Appointment) bool { return ap.Date == date })

	sort.SliceStable(out, func(i, j int) bool {
		a, errA := timeutil.ToMinutes(out[i].StartTime)
		b, errB := timeutil.ToMinutes(out[j].StartTime)
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a < b
	})
	return out
}

// ByClient is ordered by appointment time, unparseable rows last.
func (s *AppointmentStore) ByClient(clientID string) []models.Appointment {
	out := s.filter(func(ap models.Appointment) bool { return ap.ClientID == clientID })

	keys := make(map[string]int64, len(out))
	for _, ap := range out {
		if ts, err := timeutil.ToTimestamp(ap.Date, ap.StartTime, s.loc); err == nil {
			keys[ap.ID] = ts
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, okA := keys[out[i].ID]
		b, okB := keys[out[j].ID]
		switch {
		case !okA:
			return false
		case !okB:
			return true
		}
		return a < b
	})
	return out
}

// Upcoming lists appointments from the start of today on that are neither
// cancelled nor completed, soonest first. Rows whose date or time does not
// parse are left out.
func (s *AppointmentStore) Upcoming() []models.Appointment {
	today := timeutil.StartOfDay(s.clock(), s.loc).UnixMilli()

	type keyed struct {
		ap models.Appointment
		ts int64
	}

	var rows []keyed
	for _, ap := range s.All() {
		if domain.Status(ap.Status).IsTerminal() {
			continue
		}
		ts, err := timeutil.ToTimestamp(ap.Date, ap.StartTime, s.loc)
		if err != nil {
			s.log.Debug("skipping appointment with unparseable time",
				zap.String("appointment_id", ap.ID),
				zap.String("date", ap.Date),
				zap.String("start_time", ap.StartTime),
			)
			continue
		}
		if ts >= today {
			rows = append(rows, keyed{ap: ap, ts: ts})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ts < rows[j].ts })

	out := make([]models.Appointment, len(rows))
	for i, r := range rows {
		out[i] = r.ap
	}
	return out
}

// ===============================
// Internals
// ===============================

func (s *AppointmentStore) filter(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Appointment, 0, len(s.items))
	for _, ap := range s.items {
		if keep(ap) {
			out = append(out, ap)
		}
	}
	return out
}

// conflictLocked finds a blocking appointment on ap's date overlapping it,
// ignoring ap itself. Records that do not block or whose times do not parse
// never conflict. Callers hold s.mu.
func (s *AppointmentStore) conflictLocked(ap models.Appointment) (string, bool) {
	if !domain.Status(ap.Status).IsBlocking() {
		return "", false
	}
	start, end, err := domain.Span(ap)
	if err != nil {
		return "", false
	}

	sameDay := make([]models.Appointment, 0, len(s.items))
	for _, other := range s.items {
		if other.Date == ap.Date {
			sameDay = append(sameDay, other)
		}
	}
	return domain.FindConflict(start, end, sameDay, ap.ID)
}

// callers hold s.mu
func (s *AppointmentStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the current collection. The in-memory state stays
// authoritative when the write fails.
func (s *AppointmentStore) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	data, err := json.Marshal(s.items)
	s.mu.RUnlock()
	if err != nil {
		s.log.Error("encoding appointments", zap.String("key", s.key), zap.Error(err))
		return
	}

	if err := s.kv.Save(ctx, s.key, data); err != nil {
		s.log.Error("persisting appointments", zap.String("key", s.key), zap.Error(err))
	}
}

func diff(before, after models.Appointment) *domain.NotificationEvent {
	wasCancelled := domain.Status(before.Status) == domain.StatusCancelled
	isCancelled := domain.Status(after.Status) == domain.StatusCancelled

	if isCancelled && !wasCancelled {
		return eventFor(models.NotificationAppointmentCancelled, after)
	}

	if before.Date != after.Date ||
		before.StartTime != after.StartTime ||
		before.EndTime != after.EndTime ||
		before.ServiceName != after.ServiceName ||
		before.Status != after.Status {
		return eventFor(models.NotificationAppointmentChanged, after)
	}
	return nil
}

func eventFor(kind string, ap models.Appointment) *domain.NotificationEvent {
	return &domain.NotificationEvent{
		Type:          kind,
		AppointmentID: ap.ID,
		ClientName:    ap.ClientName,
		ServiceName:   ap.ServiceName,
		Date:          ap.Date,
		StartTime:     ap.StartTime,
	}
}
