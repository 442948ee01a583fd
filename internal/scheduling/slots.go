package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// sameDayRounding is the grid "now" is rounded up to on same-day searches.
const sameDayRounding = 30 * time.Minute

// FindAvailableSlots lists the open slots of the requested duration inside
// the working-hours window of one clinic-local day.
func (s *Service) FindAvailableSlots(ctx context.Context, clinicID string, req TimeSlotRequest) (*TimeSlotResponse, error) {
	cs, err := s.settings(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	day, err := parseDate("date", req.Date, cs.loc)
	if err != nil {
		return nil, err
	}

	durationMinutes := req.DurationMinutes
	if durationMinutes == 0 {
		durationMinutes = cs.slotMinutes
	}
	if durationMinutes < 0 || durationMinutes > 24*60 {
		return nil, invalidInput("durationMinutes", "must be between 1 and 1440")
	}

	hours := WorkingHours{Start: cs.workdayStart, End: cs.workdayEnd}
	if req.WorkingHours != nil {
		if req.WorkingHours.Start != "" {
			hours.Start = req.WorkingHours.Start
		}
		if req.WorkingHours.End != "" {
			hours.End = req.WorkingHours.End
		}
	}
	dayStart, err := clockOn("workingHours.start", day, hours.Start)
	if err != nil {
		return nil, err
	}
	dayEnd, err := clockOn("workingHours.end", day, hours.End)
	if err != nil {
		return nil, err
	}
	if !dayStart.Before(dayEnd) {
		return nil, invalidInput("workingHours", "start must be before end")
	}

	appointments, err := s.appointments.FindByDateRange(ctx, clinicID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("find appointments for %s: %w", req.Date, err)
	}

	window := NewInterval(dayStart, dayEnd)
	blocks := make([]BusyBlock, 0, len(appointments))
	for i := range appointments {
		a := &appointments[i]
		if !a.OccupiesTime() {
			continue
		}
		if req.ProfessionalID != "" && a.ProfessionalID != req.ProfessionalID {
			continue
		}
		// The repository range is closed; drop bookings that only touch the window.
		if !AppointmentInterval(a).Overlaps(window) {
			continue
		}
		blocks = append(blocks, BusyBlock{
			Start: a.ScheduledStart.In(cs.loc),
			End:   a.End().In(cs.loc),
			Label: BookingLabel(a),
		})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start.Before(blocks[j].Start)
	})

	from := EffectiveStart(dayStart, s.now())
	slots := GenerateSlots(from, dayEnd, blocks, time.Duration(durationMinutes)*time.Minute)

	return &TimeSlotResponse{
		Date:            req.Date,
		DurationMinutes: durationMinutes,
		WorkingHours:    hours,
		Timezone:        cs.loc.String(),
		AvailableSlots:  slots,
		BusyBlocks:      blocks,
	}, nil
}

// EffectiveStart is the earliest instant slots may start on dayStart's day.
// On the current day, once now has passed dayStart, it is now rounded up to
// the next half-hour of the local day.
func EffectiveStart(dayStart, now time.Time) time.Time {
	localNow := now.In(dayStart.Location())
	if !sameDay(localNow, dayStart) || !localNow.After(dayStart) {
		return dayStart
	}
	midnight := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, dayStart.Location())
	elapsed := localNow.Sub(midnight)
	rounded := (elapsed + sameDayRounding - 1) / sameDayRounding * sameDayRounding
	return midnight.Add(rounded)
}

// GenerateSlots sweeps the sorted busy blocks from `from` to dayEnd and packs
// back-to-back slots of length d into every gap. Remainders shorter than d
// are dropped. The cursor never moves backwards.
func GenerateSlots(from, dayEnd time.Time, blocks []BusyBlock, d time.Duration) []Slot {
	slots := []Slot{}
	if d <= 0 || !from.Before(dayEnd) {
		return slots
	}

	cursor := from
	for _, b := range blocks {
		if b.Start.After(cursor) {
			gapEnd := b.Start
			if gapEnd.After(dayEnd) {
				gapEnd = dayEnd
			}
			slots = append(slots, PackSlots(cursor, gapEnd, d)...)
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(dayEnd) {
			return slots
		}
	}
	return append(slots, PackSlots(cursor, dayEnd, d)...)
}

// PackSlots fills [from, to) with consecutive slots of length d.
func PackSlots(from, to time.Time, d time.Duration) []Slot {
	var slots []Slot
	if d <= 0 {
		return slots
	}
	minutes := int(d / time.Minute)
	for start := from; !start.Add(d).After(to); start = start.Add(d) {
		slots = append(slots, Slot{Start: start, End: start.Add(d), DurationMinutes: minutes})
	}
	return slots
}
