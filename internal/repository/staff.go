package repository

import (
	"context"

	"gorm.io/gorm"

	"clinic-scheduling-server/internal/models"
)

// StaffRepository reads the clinic roster.
type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) GetActiveProfessionalRoster(ctx context.Context, clinicID string) ([]models.Staff, error) {
	var roster []models.Staff
	err := conn(ctx, r.db).
		Where("clinic_id = ? AND active = ? AND is_professional = ?", clinicID, true, true).
		Order("created_at ASC, id ASC").
		Find(&roster).Error
	return roster, err
}
