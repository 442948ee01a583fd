package scheduling_test

import (
	"testing"
	"time"

	"clinic-scheduling-server/internal/scheduling"
)

func TestIntervalOverlaps(t *testing.T) {
	base := scheduling.NewInterval(at(10, 0), at(11, 0))
	tests := []struct {
		name  string
		other scheduling.Interval
		want  bool
	}{
		{"identical", scheduling.NewInterval(at(10, 0), at(11, 0)), true},
		{"touching before", scheduling.NewInterval(at(9, 0), at(10, 0)), false},
		{"touching after", scheduling.NewInterval(at(11, 0), at(12, 0)), false},
		{"partial start", scheduling.NewInterval(at(9, 30), at(10, 30)), true},
		{"partial end", scheduling.NewInterval(at(10, 59), at(11, 30)), true},
		{"contained", scheduling.NewInterval(at(10, 15), at(10, 45)), true},
		{"containing", scheduling.NewInterval(at(9, 0), at(12, 0)), true},
		{"disjoint", scheduling.NewInterval(at(13, 0), at(14, 0)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", base, tt.other, got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("overlap is not symmetric for %s", tt.other)
			}
		})
	}
}

func TestIntervalContains(t *testing.T) {
	day := scheduling.NewInterval(at(8, 0), at(18, 0))
	if !day.Contains(scheduling.NewInterval(at(8, 0), at(18, 0))) {
		t.Error("interval should contain itself")
	}
	if !day.Contains(scheduling.Interval{Start: at(17, 0), Duration: time.Hour}) {
		t.Error("slot ending at day end should be contained")
	}
	if day.Contains(scheduling.Interval{Start: at(17, 30), Duration: time.Hour}) {
		t.Error("slot running past day end should not be contained")
	}
}
