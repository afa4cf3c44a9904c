// utils/dates_test.go
package utils

import (
	"testing"
	"time"
)

func mustLoadNY(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading zone: %v", err)
	}
	return loc
}

func TestLocalDayWindow_RegularDay(t *testing.T) {
	t.Parallel()
	loc := mustLoadNY(t)

	ref := time.Date(2025, 6, 15, 13, 30, 0, 0, loc)
	start, end, err := LocalDayWindow(ref, 0, loc)
	if err != nil {
		t.Fatalf("LocalDayWindow returned error: %v", err)
	}

	if got := start.In(loc).Format("2006-01-02 15:04:05"); got != "2025-06-15 00:00:00" {
		t.Errorf("start = %s, want 2025-06-15 00:00:00", got)
	}
	if got := end.In(loc).Format("2006-01-02 15:04:05"); got != "2025-06-15 23:59:59" {
		t.Errorf("end = %s, want 2025-06-15 23:59:59", got)
	}
	if d := end.Sub(start); d != 24*time.Hour-time.Second {
		t.Errorf("window duration = %v, want %v", d, 24*time.Hour-time.Second)
	}
}

func TestLocalDayWindow_DSTTransitions(t *testing.T) {
	t.Parallel()
	loc := mustLoadNY(t)

	tests := []struct {
		name string
		ref  time.Time
		want time.Duration
	}{
		{
			// Spring forward 2025-03-09: the day loses an hour.
			name: "spring forward",
			ref:  time.Date(2025, 3, 9, 12, 0, 0, 0, loc),
			want: 23*time.Hour - time.Second,
		},
		{
			// Fall back 2025-11-02: the day gains an hour.
			name: "fall back",
			ref:  time.Date(2025, 11, 2, 12, 0, 0, 0, loc),
			want: 25*time.Hour - time.Second,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end, err := LocalDayWindow(tt.ref, 0, loc)
			if err != nil {
				t.Fatalf("LocalDayWindow returned error: %v", err)
			}
			if d := end.Sub(start); d != tt.want {
				t.Errorf("window duration = %v, want %v", d, tt.want)
			}
		})
	}
}

func TestLocalDayWindow_TomorrowAcrossTransition(t *testing.T) {
	t.Parallel()
	loc := mustLoadNY(t)

	// Evening before the spring-forward day: tomorrow's boundaries must
	// carry tomorrow's offsets, not tonight's.
	ref := time.Date(2025, 3, 8, 17, 0, 0, 0, loc)
	start, end, err := LocalDayWindow(ref, 1, loc)
	if err != nil {
		t.Fatalf("LocalDayWindow returned error: %v", err)
	}

	if got := start.In(loc).Format("2006-01-02 15:04:05 MST"); got != "2025-03-09 00:00:00 EST" {
		t.Errorf("start = %s, want 2025-03-09 00:00:00 EST", got)
	}
	if got := end.In(loc).Format("2006-01-02 15:04:05 MST"); got != "2025-03-09 23:59:59 EDT" {
		t.Errorf("end = %s, want 2025-03-09 23:59:59 EDT", got)
	}
}

func TestLocalDayWindow_MonthAndYearRollover(t *testing.T) {
	t.Parallel()
	loc := mustLoadNY(t)

	ref := time.Date(2025, 12, 31, 20, 0, 0, 0, loc)
	start, _, err := LocalDayWindow(ref, 1, loc)
	if err != nil {
		t.Fatalf("LocalDayWindow returned error: %v", err)
	}
	if got := start.In(loc).Format("2006-01-02"); got != "2026-01-01" {
		t.Errorf("tomorrow from Dec 31 = %s, want 2026-01-01", got)
	}
}

func TestLocalDayWindow_NilLocation(t *testing.T) {
	t.Parallel()
	if _, _, err := LocalDayWindow(time.Now(), 0, nil); err == nil {
		t.Fatal("expected error for nil location")
	}
}
