package calendarsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Provider delivers an event to the external calendar.
type Provider interface {
	Push(ctx context.Context, ev Event) error
}

// WebhookProvider posts events as JSON to a calendar bridge endpoint.
type WebhookProvider struct {
	URL    string
	Client *http.Client
}

func NewWebhookProvider(url string) *WebhookProvider {
	return &WebhookProvider{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (p *WebhookProvider) Push(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post calendar event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar webhook responded %d", resp.StatusCode)
	}
	return nil
}

// HandleAppointmentSync returns the asynq handler delivering sync tasks.
// Malformed payloads are not retried.
func HandleAppointmentSync(provider Provider, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(task.Payload(), &ev); err != nil {
			logger.Error("invalid calendar sync payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := provider.Push(ctx, ev); err != nil {
			logger.Warn("calendar sync delivery failed",
				zap.String("appointmentID", ev.AppointmentID),
				zap.String("action", ev.Action),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("calendar sync delivered",
			zap.String("appointmentID", ev.AppointmentID),
			zap.String("action", ev.Action),
		)
		return nil
	}
}

// Worker runs the asynq server consuming sync tasks.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(redis asynq.RedisClientOpt, queue string, concurrency int, provider Provider, logger *zap.Logger) *Worker {
	logger = logger.Named("calendarsync.worker")
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentSync, HandleAppointmentSync(provider, logger))
	return &Worker{srv: srv, mux: mux, logger: logger}
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	w.logger.Info("starting calendar sync worker")
	return w.srv.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
