// services/scheduler_state.go
package services

import (
	"sync"
	"time"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
)

// SchedulerState is the process-local run bookkeeping for the three
// reminder triggers: last-run instants, cumulative counters, and the
// per-kind in-flight guard that keeps a slow firing from overlapping
// with the next one of the same kind. Reset on process restart.
type SchedulerState struct {
	mu sync.Mutex

	lastRun  map[models.ReminderKind]time.Time
	inFlight map[models.ReminderKind]bool

	sentCount  int64
	errorCount int64
}

func NewSchedulerState() *SchedulerState {
	return &SchedulerState{
		lastRun:  make(map[models.ReminderKind]time.Time),
		inFlight: make(map[models.ReminderKind]bool),
	}
}

// TryBegin marks kind as in flight. It returns false if a firing of the
// same kind is already running; kinds are guarded independently.
func (s *SchedulerState) TryBegin(kind models.ReminderKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[kind] {
		return false
	}
	s.inFlight[kind] = true
	return true
}

// Finish clears the in-flight flag and stamps the last-run instant.
func (s *SchedulerState) Finish(kind models.ReminderKind, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[kind] = false
	s.lastRun[kind] = at
}

func (s *SchedulerState) AddSent(n int64) {
	s.mu.Lock()
	s.sentCount += n
	s.mu.Unlock()
}

func (s *SchedulerState) AddError(n int64) {
	s.mu.Lock()
	s.errorCount += n
	s.mu.Unlock()
}

// StatsSnapshot is a point-in-time copy of the scheduler counters,
// shaped for the health surface.
type StatsSnapshot struct {
	LastRun    map[models.ReminderKind]time.Time `json:"lastRun"`
	InFlight   []models.ReminderKind             `json:"inFlight"`
	SentCount  int64                             `json:"sentCount"`
	ErrorCount int64                             `json:"errorCount"`
}

// Snapshot returns a copy safe to read while the scheduler keeps running.
func (s *SchedulerState) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		LastRun:    make(map[models.ReminderKind]time.Time, len(s.lastRun)),
		InFlight:   []models.ReminderKind{},
		SentCount:  s.sentCount,
		ErrorCount: s.errorCount,
	}
	for kind, at := range s.lastRun {
		snap.LastRun[kind] = at
	}
	for kind, running := range s.inFlight {
		if running {
			snap.InFlight = append(snap.InFlight, kind)
		}
	}
	return snap
}
