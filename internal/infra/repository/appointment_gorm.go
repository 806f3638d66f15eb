package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/care-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness(domain.CodeNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) ApplyTransition(
	ctx context.Context,
	ap *models.Appointment,
	expectedVersion int,
	ev *models.OutboxEvent,
) error {

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     ap.Status,
		"version":    expectedVersion + 1,
		"updated_at": now,
	}
	if ap.MeetLink != nil {
		updates["meet_link"] = *ap.MeetLink
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Appointment{}).
			Where("id = ? AND version = ?", ap.ID, expectedVersion).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrBusiness(domain.CodeConflict)
		}

		if ev != nil {
			if err := tx.Create(ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ap.Version = expectedVersion + 1
	ap.UpdatedAt = now
	return nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
