// Package calendarsync pushes committed appointment changes to an external
// calendar through an asynq queue. The scheduling engine only enqueues;
// delivery and retries belong to the worker.
package calendarsync

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"clinic-scheduling-server/internal/models"
)

const TypeAppointmentSync = "calendar:appointment-sync"

// Event is the task payload describing one appointment change.
type Event struct {
	Action           string                   `json:"action"`
	ClinicID         string                   `json:"clinicId"`
	AppointmentID    string                   `json:"appointmentId"`
	ProfessionalID   string                   `json:"professionalId"`
	ProfessionalName string                   `json:"professionalName"`
	ContactName      string                   `json:"contactName"`
	Start            time.Time                `json:"start"`
	End              time.Time                `json:"end"`
	Status           models.AppointmentStatus `json:"status"`
	OccurredAt       time.Time                `json:"occurredAt"`
}

func NewEvent(action string, a *models.Appointment, at time.Time) Event {
	return Event{
		Action:           action,
		ClinicID:         a.ClinicID,
		AppointmentID:    a.ID,
		ProfessionalID:   a.ProfessionalID,
		ProfessionalName: a.ProfessionalName,
		ContactName:      a.ContactName,
		Start:            a.ScheduledStart,
		End:              a.End(),
		Status:           a.Status,
		OccurredAt:       at.UTC(),
	}
}

// NewSyncTask builds the asynq task for ev. Retries are owned by the queue.
func NewSyncTask(ev Event, queue string, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentSync, b)
	opts := []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}
