package calendarsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clinic-scheduling-server/internal/models"
)

func testAppointment() *models.Appointment {
	a := &models.Appointment{
		ClinicID:         "clinic-1",
		ContactName:      "Carol",
		ProfessionalID:   "pro-1",
		ProfessionalName: "Dr. Alice",
		ScheduledStart:   time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC),
		DurationMinutes:  45,
		Status:           models.StatusScheduled,
	}
	a.ID = "appt-1"
	return a
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Queue: "calendar"}, nil
}

type fakeProvider struct {
	events []Event
	err    error
}

func (f *fakeProvider) Push(_ context.Context, ev Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func TestDispatcher_EnqueuesEvent(t *testing.T) {
	client := &fakeEnqueuer{}
	d := NewDispatcher(client, "calendar", 3, zap.NewNop())

	if err := d.AppointmentChanged(context.Background(), "created", testAppointment()); err != nil {
		t.Fatalf("AppointmentChanged: %v", err)
	}
	if len(client.tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(client.tasks))
	}
	task := client.tasks[0]
	if task.Type() != TypeAppointmentSync {
		t.Errorf("task type = %q", task.Type())
	}
	var ev Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.Action != "created" || ev.AppointmentID != "appt-1" || ev.ClinicID != "clinic-1" {
		t.Errorf("unexpected event %+v", ev)
	}
	if !ev.End.Equal(time.Date(2030, 3, 4, 10, 45, 0, 0, time.UTC)) {
		t.Errorf("end = %v", ev.End)
	}
	if len(client.opts[0]) != 3 {
		t.Errorf("expected queue, retry and timeout options, got %d", len(client.opts[0]))
	}
}

func TestDispatcher_EnqueueError(t *testing.T) {
	client := &fakeEnqueuer{err: errors.New("redis down")}
	d := NewDispatcher(client, "", 3, zap.NewNop())

	if err := d.AppointmentChanged(context.Background(), "deleted", testAppointment()); err == nil {
		t.Fatal("expected enqueue error")
	}
}

func TestHandleAppointmentSync(t *testing.T) {
	provider := &fakeProvider{}
	handler := HandleAppointmentSync(provider, zap.NewNop())

	task, _, err := NewSyncTask(NewEvent("updated", testAppointment(), time.Now()), "calendar", 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := handler.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(provider.events) != 1 || provider.events[0].Action != "updated" {
		t.Fatalf("unexpected events %+v", provider.events)
	}

	provider.err = errors.New("calendar timeout")
	if err := handler.ProcessTask(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Errorf("delivery failures should be retried, got %v", err)
	}

	bad := asynq.NewTask(TypeAppointmentSync, []byte("{not json"))
	if err := handler.ProcessTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("malformed payload should skip retry, got %v", err)
	}
}

func TestWebhookProvider(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if received.Action == "reject" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewWebhookProvider(srv.URL)
	if err := p.Push(context.Background(), NewEvent("created", testAppointment(), time.Now())); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if received.AppointmentID != "appt-1" {
		t.Errorf("webhook received %+v", received)
	}
	if err := p.Push(context.Background(), NewEvent("reject", testAppointment(), time.Now())); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
