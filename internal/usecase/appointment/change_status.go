package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ChangeStatusInput struct {
	BusinessID    string
	UserID        string
	AppointmentID string
	Status        domain.Status
}

// ======================================================
// USE CASE
// ======================================================

// ChangeStatus applies a status change locally right away and confirms it
// against the remote backend. A failed confirmation restores the previous
// status without notifying anyone.
//
// Only one change per appointment runs at a time. When no remote backend is
// configured the change is local and final.
type ChangeStatus struct {
	tenants  TenantOpener
	creds    domain.CredentialProvider
	remote   domain.RemoteAppointmentAPI
	audit    AuditSink
	settings Settings
	log      *zap.Logger

	inFlight sync.Map // "<business>/<appointment>" -> struct{}
}

func NewChangeStatus(
	tenants TenantOpener,
	creds domain.CredentialProvider,
	remote domain.RemoteAppointmentAPI,
	audit AuditSink,
	settings Settings,
	log *zap.Logger,
) *ChangeStatus {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChangeStatus{
		tenants:  tenants,
		creds:    creds,
		remote:   remote,
		audit:    auditOrNop(audit),
		settings: settings.withDefaults(),
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ChangeStatus) Execute(
	ctx context.Context,
	in ChangeStatusInput,
) (models.Appointment, error) {

	if !in.Status.IsValid() {
		return models.Appointment{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
	}

	tenant, err := uc.tenants.Open(ctx, in.BusinessID)
	if err != nil {
		return models.Appointment{}, err
	}
	appts := tenant.Appointments

	key := in.BusinessID + "/" + in.AppointmentID
	if _, busy := uc.inFlight.LoadOrStore(key, struct{}{}); busy {
		return models.Appointment{}, domain.ErrMutationInFlight
	}
	defer uc.inFlight.Delete(key)

	current, ok := appts.Get(in.AppointmentID)
	if !ok {
		return models.Appointment{}, fmt.Errorf("%w: %s", domain.ErrNotFound, in.AppointmentID)
	}

	previous := domain.Status(current.Status)
	if previous == in.Status {
		return current, nil
	}

	target := string(in.Status)
	patch := models.AppointmentPatch{Status: &target}

	// a revived booking must not land on a slot taken since it was cancelled
	reviving := !previous.IsBlocking() && in.Status.IsBlocking()

	if uc.remote == nil {
		update := appts.Update
		if reviving {
			update = appts.UpdateIfFree
		}
		updated, err := update(ctx, in.AppointmentID, patch)
		if err != nil {
			return models.Appointment{}, err
		}
		uc.record(in, "status_changed", previous, nil)
		return updated, nil
	}

	// --------------------------------------------------
	// Credential before any optimistic write
	// --------------------------------------------------
	token, ok := "", false
	if uc.creds != nil {
		token, ok = uc.creds.AuthToken(ctx)
	}
	if !ok {
		uc.record(in, "status_unauthenticated", previous, domain.ErrUnauthenticated)
		return models.Appointment{}, domain.ErrUnauthenticated
	}

	// --------------------------------------------------
	// Optimistic write, notification held back
	// --------------------------------------------------
	updateSilently := appts.UpdateSilently
	if reviving {
		updateSilently = appts.UpdateSilentlyIfFree
	}
	change, err := updateSilently(ctx, in.AppointmentID, patch)
	if err != nil {
		return models.Appointment{}, err
	}

	// --------------------------------------------------
	// Remote confirmation survives the caller going away
	// --------------------------------------------------
	remoteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.settings.RemoteTimeout)
	defer cancel()

	remoteErr := uc.remote.UpdateStatus(remoteCtx, in.AppointmentID, in.Status, token)
	if remoteErr == nil {
		appts.Emit(ctx, change.Event)
		uc.record(in, "status_changed", previous, nil)
		return change.After, nil
	}

	// --------------------------------------------------
	// Rollback
	// --------------------------------------------------
	prev := string(previous)
	if _, err := appts.UpdateSilently(context.WithoutCancel(ctx), in.AppointmentID, models.AppointmentPatch{Status: &prev}); err != nil {
		uc.log.Error("status rollback failed",
			zap.String("business_id", in.BusinessID),
			zap.String("appointment_id", in.AppointmentID),
			zap.Error(err),
		)
	}

	failure := classifyRemoteError(remoteErr)
	uc.record(in, "status_rolled_back", previous, failure)

	uc.log.Info("status change rolled back",
		zap.String("business_id", in.BusinessID),
		zap.String("appointment_id", in.AppointmentID),
		zap.String("from", prev),
		zap.String("to", target),
		zap.Error(remoteErr),
	)

	return models.Appointment{}, failure
}

// classifyRemoteError keeps auth failures recognisable and turns everything
// else into a rejection the caller can show.
func classifyRemoteError(err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}
	var rejected *domain.RemoteRejectedError
	if errors.As(err, &rejected) {
		return err
	}
	return &domain.RemoteRejectedError{Cause: err}
}

func (uc *ChangeStatus) record(in ChangeStatusInput, action string, from domain.Status, failure error) {
	meta := map[string]string{
		"from": string(from),
		"to":   string(in.Status),
	}
	if failure != nil {
		meta["error"] = failure.Error()
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Action:     action,
		Entity:     "appointment",
		EntityID:   in.AppointmentID,
		Metadata:   meta,
	})
}

// ======================================================
// Named actions
// ======================================================

func (uc *ChangeStatus) Accept(ctx context.Context, businessID, userID, appointmentID string) (models.Appointment, error) {
	return uc.Execute(ctx, ChangeStatusInput{BusinessID: businessID, UserID: userID, AppointmentID: appointmentID, Status: domain.StatusConfirmed})
}

func (uc *ChangeStatus) Decline(ctx context.Context, businessID, userID, appointmentID string) (models.Appointment, error) {
	return uc.Execute(ctx, ChangeStatusInput{BusinessID: businessID, UserID: userID, AppointmentID: appointmentID, Status: domain.StatusCancelled})
}

func (uc *ChangeStatus) Cancel(ctx context.Context, businessID, userID, appointmentID string) (models.Appointment, error) {
	return uc.Execute(ctx, ChangeStatusInput{BusinessID: businessID, UserID: userID, AppointmentID: appointmentID, Status: domain.StatusCancelled})
}

func (uc *ChangeStatus) Complete(ctx context.Context, businessID, userID, appointmentID string) (models.Appointment, error) {
	return uc.Execute(ctx, ChangeStatusInput{BusinessID: businessID, UserID: userID, AppointmentID: appointmentID, Status: domain.StatusCompleted})
}
