package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/agenda-engine/internal/credentials"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

func statusOf(t *testing.T, uc *ChangeStatus, id string) string {
	t.Helper()
	tenant, err := uc.tenants.Open(context.Background(), bizID)
	require.NoError(t, err)
	for _, ap := range tenant.Appointments.ByDate("2025-03-01") {
		if ap.ID == id {
			return ap.Status
		}
	}
	t.Fatalf("appointment %s not found", id)
	return ""
}

func TestChangeStatus_Success(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{}
	auditLog := &recordingAudit{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, auditLog, testSettings(), nil)

	got, err := uc.Accept(context.Background(), bizID, "u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "confirmed", statusOf(t, uc, "a1"))
	assert.Equal(t, "tok", remote.token)
	assert.Equal(t, []string{models.NotificationNewAppointment, models.NotificationAppointmentChanged}, notificationTypes(t, r))
	assert.Equal(t, []string{"status_changed"}, auditLog.actions())
}

func TestChangeStatus_RollbackOnRemoteFailure(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{err: &domain.RemoteRejectedError{StatusCode: 409, Reason: "slot already taken"}}
	auditLog := &recordingAudit{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, auditLog, testSettings(), nil)

	_, err := uc.Execute(context.Background(), ChangeStatusInput{
		BusinessID:    bizID,
		AppointmentID: "a1",
		Status:        domain.StatusConfirmed,
	})

	var rejected *domain.RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "slot already taken", rejected.UserMessage())

	assert.Equal(t, "pending", statusOf(t, uc, "a1"))
	assert.Equal(t, []string{models.NotificationNewAppointment}, notificationTypes(t, r),
		"a failed change leaves no changed notification behind")
	assert.Equal(t, []string{"status_rolled_back"}, auditLog.actions())
}

func TestChangeStatus_PlainRemoteErrorBecomesRejection(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	uc := NewChangeStatus(r, credentials.Static("tok"), &fakeRemote{err: errBackendDown}, nil, testSettings(), nil)

	_, err := uc.Complete(context.Background(), bizID, "u1", "a1")

	var rejected *domain.RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.ErrorIs(t, err, errBackendDown)
	assert.NotEmpty(t, rejected.UserMessage())
	assert.Equal(t, "pending", statusOf(t, uc, "a1"))
}

func TestChangeStatus_NoCredentialSkipsRemote(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{}
	auditLog := &recordingAudit{}
	uc := NewChangeStatus(r, credentials.Request{}, remote, auditLog, testSettings(), nil)

	_, err := uc.Accept(context.Background(), bizID, "u1", "a1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Zero(t, remote.callCount())
	assert.Equal(t, "pending", statusOf(t, uc, "a1"))
	assert.Equal(t, []string{models.NotificationNewAppointment}, notificationTypes(t, r))
	assert.Equal(t, []string{"status_unauthenticated"}, auditLog.actions())
}

func TestChangeStatus_RequestCredential(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{}
	uc := NewChangeStatus(r, credentials.Request{}, remote, nil, testSettings(), nil)

	ctx := credentials.WithToken(context.Background(), "user-jwt")
	_, err := uc.Accept(ctx, bizID, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "user-jwt", remote.token)
}

func TestChangeStatus_RemoteAuthFailureRollsBack(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{err: fmt.Errorf("%w: remote answered 401", domain.ErrUnauthenticated)}
	uc := NewChangeStatus(r, credentials.Static("expired"), remote, nil, testSettings(), nil)

	_, err := uc.Decline(context.Background(), bizID, "u1", "a1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, "pending", statusOf(t, uc, "a1"))
	assert.Equal(t, []string{models.NotificationNewAppointment}, notificationTypes(t, r))
}

func TestChangeStatus_OneMutationPerAppointment(t *testing.T) {
	r := newRegistry()
	seed(t, r,
		appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending),
		appt("a2", "2025-03-01", "11:00", "11:30", domain.StatusPending),
	)

	remote := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, nil, testSettings(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Accept(context.Background(), bizID, "u1", "a1")
		done <- err
	}()

	<-remote.entered
	assert.Equal(t, "confirmed", statusOf(t, uc, "a1"), "optimistic state is visible while the remote call runs")

	_, err := uc.Decline(context.Background(), bizID, "u2", "a1")
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)

	// a different appointment is not blocked
	other := make(chan error, 1)
	go func() {
		_, err := uc.Accept(context.Background(), bizID, "u1", "a2")
		other <- err
	}()
	<-remote.entered

	remote.release <- struct{}{}
	remote.release <- struct{}{}
	require.NoError(t, <-done)
	require.NoError(t, <-other)

	remote.entered = nil
	got, err := uc.Complete(context.Background(), bizID, "u1", "a1")
	require.NoError(t, err, "guard is released once the change settles")
	assert.Equal(t, "completed", got.Status)
}

func TestChangeStatus_CallerCancellationDoesNotAbortRemote(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, nil, testSettings(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Accept(ctx, bizID, "u1", "a1")
	require.NoError(t, err)

	require.NotNil(t, remote.ctx)
	assert.NoError(t, remote.ctx.Err())
	_, hasDeadline := remote.ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestChangeStatus_Guards(t *testing.T) {
	r := newRegistry()
	done := appt("done", "2025-03-01", "09:00", "09:30", domain.StatusCompleted)
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending), done)

	remote := &fakeRemote{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, nil, testSettings(), nil)
	ctx := context.Background()

	t.Run("same status is a no-op", func(t *testing.T) {
		got, err := uc.Execute(ctx, ChangeStatusInput{BusinessID: bizID, AppointmentID: "a1", Status: domain.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, "pending", got.Status)
		assert.Zero(t, remote.callCount())
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := uc.Execute(ctx, ChangeStatusInput{BusinessID: bizID, AppointmentID: "a1", Status: "archived"})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("missing appointment", func(t *testing.T) {
		_, err := uc.Accept(ctx, bizID, "u1", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("completed can still be cancelled", func(t *testing.T) {
		got, err := uc.Cancel(ctx, bizID, "u1", "done")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", got.Status)
	})

	t.Run("cancelled can be set back to pending", func(t *testing.T) {
		got, err := uc.Execute(ctx, ChangeStatusInput{BusinessID: bizID, AppointmentID: "done", Status: domain.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, "pending", got.Status)
	})
}

func TestChangeStatus_RevivingCancelledChecksOverlap(t *testing.T) {
	r := newRegistry()
	seed(t, r,
		appt("old", "2025-03-01", "10:00", "10:30", domain.StatusCancelled),
		appt("new", "2025-03-01", "10:15", "10:45", domain.StatusConfirmed),
		appt("free", "2025-03-01", "14:00", "14:30", domain.StatusCancelled),
	)

	remote := &fakeRemote{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, nil, testSettings(), nil)
	ctx := context.Background()

	_, err := uc.Accept(ctx, bizID, "u1", "old")
	assert.ErrorIs(t, err, domain.ErrTimeConflict)
	assert.Zero(t, remote.callCount(), "rejected before the remote call")

	ap, _ := openTenant(t, r).Appointments.Get("old")
	assert.Equal(t, "cancelled", ap.Status)

	got, err := uc.Accept(ctx, bizID, "u1", "free")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)

	t.Run("local only", func(t *testing.T) {
		local := NewChangeStatus(r, nil, nil, nil, testSettings(), nil)
		_, err := local.Execute(ctx, ChangeStatusInput{BusinessID: bizID, AppointmentID: "old", Status: domain.StatusPending})
		assert.ErrorIs(t, err, domain.ErrTimeConflict)
	})
}

func TestChangeStatus_LocalOnly(t *testing.T) {
	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	uc := NewChangeStatus(r, nil, nil, nil, testSettings(), nil)

	got, err := uc.Cancel(context.Background(), bizID, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, []string{models.NotificationNewAppointment, models.NotificationAppointmentCancelled}, notificationTypes(t, r))
}

func TestChangeStatus_RemoteTimeoutApplied(t *testing.T) {
	settings := testSettings()
	settings.RemoteTimeout = 50 * time.Millisecond

	r := newRegistry()
	seed(t, r, appt("a1", "2025-03-01", "10:00", "10:30", domain.StatusPending))

	remote := &fakeRemote{}
	uc := NewChangeStatus(r, credentials.Static("tok"), remote, nil, settings, nil)

	_, err := uc.Accept(context.Background(), bizID, "u1", "a1")
	require.NoError(t, err)

	deadline, ok := remote.ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
}
