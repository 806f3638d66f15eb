package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/care-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/care-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/care-scheduler/internal/domain/notification"
	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
	"github.com/BruksfildServices01/care-scheduler/internal/metrics"
	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

const (
	AggregateAppointment    = "appointment"
	EventNotificationIntent = "appointment.notification"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type ManageAppointmentInput struct {
	Action        string
	AppointmentID string
	// Reason is accepted from callers but not used by the workflow.
	Reason    string
	MeetLink  string
	ActorName string
}

type ManageAppointmentResult struct {
	Status  string
	Message string

	// NotificationStored is false when the inline insert failed and the
	// notification was left to the outbox relay.
	NotificationStored bool
}

// OutboxMarker closes an outbox event once its notification is stored.
type OutboxMarker interface {
	MarkDelivered(ctx context.Context, id string) error
}

// ======================================================
// USE CASE
// ======================================================

type ManageAppointment struct {
	repo          domain.Repository
	notifications notification.Store
	outbox        OutboxMarker
	audit         *audit.Dispatcher
	policy        domain.Policy
	metrics       *metrics.Metrics
	logger        *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewManageAppointment(
	repo domain.Repository,
	notifications notification.Store,
	outbox OutboxMarker,
	audit *audit.Dispatcher,
	policy domain.Policy,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ManageAppointment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManageAppointment{
		repo:          repo,
		notifications: notifications,
		outbox:        outbox,
		audit:         audit,
		policy:        policy,
		metrics:       m,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

func (uc *ManageAppointment) Execute(
	ctx context.Context,
	in ManageAppointmentInput,
) (*ManageAppointmentResult, error) {

	appointmentID := strings.TrimSpace(in.AppointmentID)
	action := domain.ParseAction(in.Action)
	if appointmentID == "" || action == "" {
		uc.metrics.ObserveTransition(string(action), "invalid_request")
		return nil, httperr.ErrBusiness(domain.CodeInvalidRequest)
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		uc.metrics.ObserveTransition(string(action), resultOf(err))
		return nil, err
	}

	expectedVersion := ap.Version

	tr, err := domain.Apply(ap, action, in.MeetLink, uc.policy)
	if err != nil {
		uc.metrics.ObserveTransition(string(action), resultOf(err))
		return nil, err
	}

	intent := uc.intentFor(ap, tr, in.ActorName)

	payload, err := json.Marshal(intent)
	if err != nil {
		return nil, fmt.Errorf("encode notification intent: %w", err)
	}

	ev := &models.OutboxEvent{
		ID:            uc.newID(),
		AggregateType: AggregateAppointment,
		AggregateID:   ap.ID,
		EventType:     EventNotificationIntent,
		Payload:       datatypes.JSON(payload),
		CreatedAt:     uc.now(),
	}

	if err := uc.repo.ApplyTransition(ctx, ap, expectedVersion, ev); err != nil {
		uc.metrics.ObserveTransition(string(action), resultOf(err))
		return nil, err
	}
	uc.metrics.ObserveTransition(string(action), "ok")

	stored := uc.storeNotification(ctx, ev.ID, intent)

	uc.audit.Dispatch(audit.Event{
		Actor:    strings.TrimSpace(in.ActorName),
		Action:   auditAction(tr.To),
		Entity:   AggregateAppointment,
		EntityID: ap.ID,
		Metadata: map[string]any{
			"from":    string(tr.From),
			"to":      string(tr.To),
			"version": ap.Version,
		},
	})

	return &ManageAppointmentResult{
		Status:             ap.Status,
		Message:            fmt.Sprintf("Cita actualizada a %s", ap.Status),
		NotificationStored: stored,
	}, nil
}

// ======================================================
// HELPERS
// ======================================================

func (uc *ManageAppointment) intentFor(
	ap *models.Appointment,
	tr domain.Transition,
	actor string,
) notification.Intent {

	d := notification.Details{
		Date:  ap.Date,
		Time:  ap.Time,
		Actor: actor,
	}
	if tr.MeetLink != nil {
		d.MeetLink = *tr.MeetLink
	}

	title, body, _ := notification.Compose(string(tr.To), d)

	return notification.Intent{
		AppointmentID: ap.ID,
		UserID:        ap.PatientID,
		Title:         title,
		Body:          body,
		Type:          notification.TypeAppointment,
	}
}

// storeNotification inserts the notification right away. A failure is only
// logged: the outbox event stays pending and the relay retries it.
func (uc *ManageAppointment) storeNotification(
	ctx context.Context,
	eventID string,
	intent notification.Intent,
) bool {

	n := intent.Notification(eventID, uc.now())
	if err := uc.notifications.CreateNotification(ctx, n); err != nil {
		uc.metrics.ObserveNotification("inline", "error")
		uc.logger.Warn("notification insert failed, left to outbox relay",
			zap.String("appointment_id", intent.AppointmentID),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return false
	}
	uc.metrics.ObserveNotification("inline", "ok")

	if err := uc.outbox.MarkDelivered(ctx, eventID); err != nil {
		// the relay will insert again; the shared id makes that a no-op
		uc.logger.Warn("outbox mark delivered failed",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
	return true
}

func auditAction(s domain.Status) string {
	switch s {
	case domain.StatusConfirmed:
		return "appointment_confirmed"
	case domain.StatusCancelled:
		return "appointment_cancelled"
	case domain.StatusNoShow:
		return "appointment_no_show"
	}
	return "appointment_updated"
}

func resultOf(err error) string {
	if code := httperr.Code(err); code != "" {
		return code
	}
	return "error"
}
