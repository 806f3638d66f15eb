package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

type DeviceTokenGormRepository struct {
	db *gorm.DB
}

func NewDeviceTokenGormRepository(db *gorm.DB) *DeviceTokenGormRepository {
	return &DeviceTokenGormRepository{db: db}
}

// LatestTokenForUser returns the most recently registered token, or "" when
// the user has none.
func (r *DeviceTokenGormRepository) LatestTokenForUser(
	ctx context.Context,
	userID string,
) (string, error) {

	var dt models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&dt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return dt.Token, nil
}

// UpsertToken registers token for userID. A token moving to another user
// (shared device, new login) is reassigned.
func (r *DeviceTokenGormRepository) UpsertToken(
	ctx context.Context,
	userID string,
	token string,
	deviceInfo string,
) error {

	now := time.Now().UTC()
	dt := models.DeviceToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
		}).
		Create(&dt).Error
}

func (r *DeviceTokenGormRepository) DeleteToken(
	ctx context.Context,
	token string,
) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.DeviceToken{}).Error
}
