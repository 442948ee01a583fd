// Package repository implements the scheduling storage contract on gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/scheduling"
)

type txKey struct{}

// withTx binds a transaction to ctx so repository calls made inside a
// booking guard join it.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// AppointmentRepository stores appointments in MySQL.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentOrder = "scheduled_start ASC, id ASC"

func (r *AppointmentRepository) FindByDateRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := conn(ctx, r.db).
		Where("clinic_id = ? AND scheduled_start <= ? AND scheduled_end >= ?", clinicID, end.UTC(), start.UTC()).
		Order(appointmentOrder).
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) FindByID(ctx context.Context, clinicID, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := conn(ctx, r.db).Where("clinic_id = ? AND id = ?", clinicID, id).First(&appointment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, scheduling.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) FindByContact(ctx context.Context, clinicID, contactID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := conn(ctx, r.db).
		Where("clinic_id = ? AND contact_id = ?", clinicID, contactID).
		Order(appointmentOrder).
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) FindAll(ctx context.Context, clinicID string, filters scheduling.AppointmentFilters) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.filtered(ctx, clinicID, filters).Order(appointmentOrder).Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) FindAllPaginated(ctx context.Context, clinicID string, filters scheduling.AppointmentFilters, limit, offset int) ([]models.Appointment, int64, error) {
	var total int64
	if err := r.filtered(ctx, clinicID, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []models.Appointment
	err := r.filtered(ctx, clinicID, filters).
		Order(appointmentOrder).
		Limit(limit).
		Offset(offset).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return conn(ctx, r.db).Create(a).Error
}

func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	// Updates rather than Save: Save upserts when no row matches.
	res := conn(ctx, r.db).Model(a).
		Where("clinic_id = ?", a.ClinicID).
		Select("*").
		Omit("id", "created_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return scheduling.ErrAppointmentNotFound
	}
	return nil
}

// UpdateStatus returns nil, nil when the appointment does not exist.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, clinicID, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	appointment, err := r.FindByID(ctx, clinicID, id)
	if errors.Is(err, scheduling.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = conn(ctx, r.db).Model(appointment).Update("status", status).Error
	if err != nil {
		return nil, err
	}
	appointment.Status = status
	return appointment, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, clinicID, id string) (bool, error) {
	res := conn(ctx, r.db).Where("clinic_id = ? AND id = ?", clinicID, id).Delete(&models.Appointment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentRepository) ReassignProfessional(ctx context.Context, clinicID string, ids []string, professionalID, professionalName string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(ctx, r.db).Model(&models.Appointment{}).
		Where("clinic_id = ? AND id IN ?", clinicID, ids).
		Updates(map[string]interface{}{
			"professional_id":   professionalID,
			"professional_name": professionalName,
		})
	return res.RowsAffected, res.Error
}

func (r *AppointmentRepository) filtered(ctx context.Context, clinicID string, f scheduling.AppointmentFilters) *gorm.DB {
	q := conn(ctx, r.db).Model(&models.Appointment{}).Where("clinic_id = ?", clinicID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContactID != "" {
		q = q.Where("contact_id = ?", f.ContactID)
	}
	if f.ProfessionalID != "" {
		q = q.Where("professional_id = ?", f.ProfessionalID)
	}
	if f.From != nil {
		q = q.Where("scheduled_start >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("scheduled_start <= ?", f.To.UTC())
	}
	return q
}
