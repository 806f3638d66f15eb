package appointment

import (
	"context"

	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

type Repository interface {
	// GetAppointment returns a CodeNotFound business error when id is unknown.
	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	// ApplyTransition persists ap's status and meeting link only if the stored
	// version still equals expectedVersion, and writes ev in the same
	// transaction. A lost race yields a CodeConflict business error.
	ApplyTransition(
		ctx context.Context,
		ap *models.Appointment,
		expectedVersion int,
		ev *models.OutboxEvent,
	) error
}
