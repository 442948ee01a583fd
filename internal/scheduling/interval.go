package scheduling

import (
	"fmt"
	"time"

	"clinic-scheduling-server/internal/models"
)

// Interval is a half-open time range [Start, Start+Duration).
type Interval struct {
	Start    time.Time
	Duration time.Duration
}

// NewInterval builds the interval [start, end).
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, Duration: end.Sub(start)}
}

// AppointmentInterval returns the time an appointment occupies.
func AppointmentInterval(a *models.Appointment) Interval {
	return Interval{Start: a.ScheduledStart, Duration: a.Duration()}
}

func (i Interval) End() time.Time {
	return i.Start.Add(i.Duration)
}

// Overlaps reports whether the two intervals share any instant. Touching
// edges do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End()) && o.Start.Before(i.End())
}

// Contains reports whether o lies fully inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End().After(i.End())
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End().Format(time.RFC3339))
}

// instantLayouts are accepted for request instants. Layouts without an
// offset are read in the clinic timezone.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseInstant(field, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, invalidInput(field, "is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalidInput(field, "%q is not a valid date-time", value)
}

func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, invalidInput(field, "is required")
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, invalidInput(field, "%q is not a valid YYYY-MM-DD date", value)
	}
	return t, nil
}

// clockOn anchors an "HH:MM" wall-clock time to the given local day.
func clockOn(field string, day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, invalidInput(field, "%q is not a valid HH:MM time", hhmm)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
