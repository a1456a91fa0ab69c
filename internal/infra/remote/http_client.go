// Package remote applies appointment status changes on the backend that owns
// the appointments.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
)

type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

// HTTPClient talks to a REST backend:
//
//	PATCH {base}/appointments/{id}  {"status": "..."}
type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewHTTPClient(cfg HTTPConfig, log *zap.Logger) (*HTTPClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: newBreaker("remote-appointments", cfg.Breaker, log),
		log:     log,
	}, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *HTTPClient) UpdateStatus(
	ctx context.Context,
	appointmentID string,
	status domain.Status,
	token string,
) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.patch(ctx, appointmentID, status, token)
	})
	return breakerError(err)
}

func (c *HTTPClient) patch(
	ctx context.Context,
	appointmentID string,
	status domain.Status,
	token string,
) error {
	body, err := json.Marshal(statusRequest{Status: string(status)})
	if err != nil {
		return &domain.RemoteRejectedError{Cause: err}
	}

	endpoint := c.baseURL + "/appointments/" + url.PathEscape(appointmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return &domain.RemoteRejectedError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("remote status update failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
		return &domain.RemoteRejectedError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	reason := reasonFrom(raw)

	c.log.Info("remote refused status update",
		zap.String("appointment_id", appointmentID),
		zap.Int("status_code", resp.StatusCode),
		zap.String("reason", reason),
	)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: remote answered %d", domain.ErrUnauthenticated, resp.StatusCode)
	}
	return &domain.RemoteRejectedError{StatusCode: resp.StatusCode, Reason: reason}
}

func reasonFrom(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

var _ domain.RemoteAppointmentAPI = (*HTTPClient)(nil)
