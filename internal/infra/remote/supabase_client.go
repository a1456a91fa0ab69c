package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
)

type SupabaseConfig struct {
	URL     string
	APIKey  string
	Table   string
	Breaker BreakerConfig
}

// SupabaseClient updates the appointments table through PostgREST, acting as
// the caller so row level security applies.
type SupabaseClient struct {
	cfg     SupabaseConfig
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewSupabaseClient(cfg SupabaseConfig, log *zap.Logger) (*SupabaseClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if cfg.Table == "" {
		cfg.Table = "appointments"
	}

	return &SupabaseClient{
		cfg:     cfg,
		breaker: newBreaker("supabase-appointments", cfg.Breaker, log),
		log:     log,
	}, nil
}

func (c *SupabaseClient) UpdateStatus(
	ctx context.Context,
	appointmentID string,
	status domain.Status,
	token string,
) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.update(ctx, appointmentID, status, token)
	})
	return breakerError(err)
}

func (c *SupabaseClient) update(
	ctx context.Context,
	appointmentID string,
	status domain.Status,
	token string,
) error {
	if err := ctx.Err(); err != nil {
		return &domain.RemoteRejectedError{Cause: err}
	}

	client, err := supa.NewClient(c.cfg.URL, c.cfg.APIKey, &supa.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return &domain.RemoteRejectedError{Cause: err}
	}

	data, _, err := client.From(c.cfg.Table).
		Update(map[string]interface{}{"status": string(status)}, "", "").
		Eq("id", appointmentID).
		Execute()
	if err != nil {
		c.log.Info("supabase refused status update",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
		return classifyPostgrestError(err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) == 0 {
		// row level security hides rows instead of refusing them
		return &domain.RemoteRejectedError{StatusCode: 404, Reason: "Appointment not found."}
	}
	return nil
}

// postgrest-go reports backend failures as "(CODE) message" and transport
// failures as plain errors.
func classifyPostgrestError(err error) error {
	msg := err.Error()
	end := strings.Index(msg, ")")
	if !strings.HasPrefix(msg, "(") || end < 0 {
		return &domain.RemoteRejectedError{Cause: err}
	}

	code := msg[1:end]
	text := strings.TrimSpace(msg[end+1:])
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(code, "PGRST30"), strings.Contains(lower, "jwt"), strings.Contains(lower, "api key"):
		return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, text)
	case strings.HasPrefix(code, "PGRST"), strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"), code == "42501":
		return &domain.RemoteRejectedError{StatusCode: 400, Reason: text, Cause: err}
	default:
		return &domain.RemoteRejectedError{StatusCode: 500, Reason: text, Cause: err}
	}
}

var _ domain.RemoteAppointmentAPI = (*SupabaseClient)(nil)
