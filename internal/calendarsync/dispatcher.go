package calendarsync

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
)

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns appointment changes into queued sync tasks.
type Dispatcher struct {
	client   Enqueuer
	queue    string
	maxRetry int
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatcher(client Enqueuer, queue string, maxRetry int, logger *zap.Logger) *Dispatcher {
	if queue == "" {
		queue = "default"
	}
	return &Dispatcher{
		client:   client,
		queue:    queue,
		maxRetry: maxRetry,
		logger:   logger.Named("calendarsync"),
		now:      time.Now,
	}
}

// AppointmentChanged enqueues a sync task for a.
func (d *Dispatcher) AppointmentChanged(ctx context.Context, action string, a *models.Appointment) error {
	task, opts, err := NewSyncTask(NewEvent(action, a, d.now()), d.queue, d.maxRetry)
	if err != nil {
		return fmt.Errorf("build sync task: %w", err)
	}
	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue sync task: %w", err)
	}
	d.logger.Debug("sync task enqueued",
		zap.String("taskID", info.ID),
		zap.String("action", action),
		zap.String("appointmentID", a.ID),
	)
	return nil
}
