package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/store"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
)

// TenantOpener hands out the collections of a business.
type TenantOpener interface {
	Open(ctx context.Context, businessID string) (*store.Tenant, error)
}

type AuditSink interface {
	Dispatch(ev audit.Event)
}

// Settings are the business defaults used when nothing more specific is
// configured for a business.
type Settings struct {
	Location       *time.Location
	Clock          timeutil.Clock
	Hours          domain.BusinessHours
	StepMinutes    int
	ServiceMinutes int
	RemoteTimeout  time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Location:       timeutil.Location(timeutil.DefaultTimezone),
		Clock:          timeutil.SystemClock,
		Hours:          domain.DefaultBusinessHours(),
		StepMinutes:    domain.DefaultStepMinutes,
		ServiceMinutes: domain.DefaultServiceDuration,
		RemoteTimeout:  10 * time.Second,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.Location == nil {
		s.Location = def.Location
	}
	if s.Clock == nil {
		s.Clock = def.Clock
	}
	if s.Hours.EndHour <= s.Hours.StartHour {
		s.Hours = def.Hours
	}
	if s.StepMinutes <= 0 {
		s.StepMinutes = def.StepMinutes
	}
	if s.ServiceMinutes <= 0 {
		s.ServiceMinutes = def.ServiceMinutes
	}
	if s.RemoteTimeout <= 0 {
		s.RemoteTimeout = def.RemoteTimeout
	}
	return s
}

type nopAudit struct{}

func (nopAudit) Dispatch(audit.Event) {}

func auditOrNop(a AuditSink) AuditSink {
	if a == nil {
		return nopAudit{}
	}
	return a
}

// isoDate normalizes any accepted date layout to "YYYY-MM-DD".
func isoDate(raw string, loc *time.Location) (string, error) {
	t, err := timeutil.NormalizeDate(raw, loc)
	if err != nil {
		return "", err
	}
	return t.Format(timeutil.ISODateLayout), nil
}
