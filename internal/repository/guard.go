package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

// BookingGuard serializes check-then-write sequences in the database. Each
// call runs in one transaction holding a FOR UPDATE lock on the
// professional_day_locks row for its key, so concurrent bookings for the
// same professional and day queue behind each other on every replica.
type BookingGuard struct {
	db *gorm.DB
}

func NewBookingGuard(db *gorm.DB) *BookingGuard {
	return &BookingGuard{db: db}
}

func (g *BookingGuard) Serialize(ctx context.Context, key scheduling.BookingKey, fn func(ctx context.Context) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := models.ProfessionalDayLock{
			ClinicID:       key.ClinicID,
			ProfessionalID: key.ProfessionalID,
			Day:            key.Day,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock).Error; err != nil {
			return fmt.Errorf("ensure booking lock row: %w", err)
		}

		var held models.ProfessionalDayLock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("clinic_id = ? AND professional_id = ? AND day = ?", key.ClinicID, key.ProfessionalID, key.Day).
			First(&held).Error
		if err != nil {
			return fmt.Errorf("acquire booking lock: %w", err)
		}

		return fn(withTx(ctx, tx))
	})
}
