// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/config"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/utils"
)

var (
	// ErrRunInProgress means a firing of the same kind is still running.
	ErrRunInProgress = errors.New("a run of this kind is already in progress")
	// ErrUnknownKind means the kind string is not one of the three.
	ErrUnknownKind = errors.New("unknown reminder kind")
)

// MessageDeliverer is the delivery engine seam. *SMSService is the
// production implementation.
type MessageDeliverer interface {
	Ready() bool
	Deliver(ctx context.Context, phone, body string) DeliveryOutcome
	Pace(ctx context.Context) error
}

// Run outcome statuses, distinguishing "nothing to send" from "sends
// attempted" on the admin surface.
const (
	RunNoAppointments = "no_appointments"
	RunNoRecipients   = "no_recipients"
	RunCompleted      = "completed"
	// RunInterrupted means the batch stopped partway (context cancelled
	// while pacing); sends before the interruption stand and are recorded.
	RunInterrupted = "interrupted"
)

// RunResult summarizes one firing for logs and the admin surface.
type RunResult struct {
	Kind         models.ReminderKind `json:"kind"`
	Status       string              `json:"status"`
	WindowStart  time.Time           `json:"windowStart"`
	WindowEnd    time.Time           `json:"windowEnd"`
	Appointments int                 `json:"appointments"`
	Sent         int                 `json:"sent"`
	Failed       int                 `json:"failed"`
	Skipped      int                 `json:"skipped"` // recipients with every appointment already recorded
}

// ReminderService runs the three reminder triggers. Cron firings and
// the admin runNow endpoint share the one RunKind path; the per-kind
// in-flight guard in SchedulerState keeps same-kind firings from
// overlapping while leaving the other kinds independent.
type ReminderService struct {
	cfg *config.ReminderConfig
	loc *time.Location

	appointments AppointmentSource
	recipients   RecipientSource
	ledger       ReminderLedger
	sms          MessageDeliverer
	state        *SchedulerState

	cron *cron.Cron
	now  func() time.Time
}

func NewReminderService(cfg *config.ReminderConfig, loc *time.Location,
	appointments AppointmentSource, recipients RecipientSource,
	ledger ReminderLedger, sms MessageDeliverer, state *SchedulerState) *ReminderService {
	return &ReminderService{
		cfg:          cfg,
		loc:          loc,
		appointments: appointments,
		recipients:   recipients,
		ledger:       ledger,
		sms:          sms,
		state:        state,
		now:          time.Now,
	}
}

// StartScheduler wires the three triggers. The cron runs in the
// dealership timezone so the daily specs fire at fixed local times.
func (s *ReminderService) StartScheduler() {
	c := cron.New(cron.WithLocation(s.loc))

	c.AddFunc(s.cfg.DayBeforeAt.CronSpec(), func() { s.runScheduled(models.KindDayBefore) })
	c.AddFunc(s.cfg.DayOfAt.CronSpec(), func() { s.runScheduled(models.KindDayOf) })
	c.AddFunc(fmt.Sprintf("@every %s", s.cfg.PollInterval), func() { s.runScheduled(models.KindOneHour) })

	c.Start()
	s.cron = c
	log.Printf("Reminder scheduler started (day_before %s, day_of %s, one_hour every %s, zone %s)",
		s.cfg.DayBeforeAt, s.cfg.DayOfAt, s.cfg.PollInterval, s.loc)
}

// StopScheduler stops the timers and waits for any running firing.
func (s *ReminderService) StopScheduler() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// runScheduled is the cron callback wrapper: errors are logged and
// swallowed so a bad firing never takes the scheduler down.
func (s *ReminderService) runScheduled(kind models.ReminderKind) {
	result, err := s.RunKind(context.Background(), kind)
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Printf("Skipping %s firing: previous run still in progress", kind)
	case err != nil:
		log.Printf("Firing %s aborted: %v", kind, err)
	default:
		log.Printf("Firing %s finished: %s (%d appointments, %d sent, %d failed, %d skipped)",
			kind, result.Status, result.Appointments, result.Sent, result.Failed, result.Skipped)
	}
}

// RunKind executes one firing of kind: resolve the window, fetch the
// batch, and message every opted-in recipient that has not already been
// reminded of all of it. Both cron firings and the admin runNow come
// through here.
//
// An error return means the firing aborted before any send was
// attempted; partial delivery failures and a batch interrupted midway
// are reported inside the result.
func (s *ReminderService) RunKind(ctx context.Context, kind models.ReminderKind) (*RunResult, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	if !s.state.TryBegin(kind) {
		return nil, ErrRunInProgress
	}
	defer func() { s.state.Finish(kind, s.now()) }()

	start, end, err := s.windowFor(kind)
	if err != nil {
		s.state.AddError(1)
		return nil, fmt.Errorf("resolving %s window: %w", kind, err)
	}

	result := &RunResult{Kind: kind, WindowStart: start, WindowEnd: end}

	appointments, err := s.appointments.AppointmentsBetween(ctx, start, end)
	if err != nil {
		s.state.AddError(1)
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}
	result.Appointments = len(appointments)
	if len(appointments) == 0 {
		result.Status = RunNoAppointments
		return result, nil
	}

	// Abort before any ledger write: an unconfigured transport must not
	// burn the dedup slots with failed rows.
	if !s.sms.Ready() {
		s.state.AddError(1)
		return nil, ErrTransportNotReady
	}

	recipients, err := s.recipients.OptedInRecipients(ctx)
	if err != nil {
		s.state.AddError(1)
		return nil, fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) == 0 {
		result.Status = RunNoRecipients
		return result, nil
	}

	body := ComposeMessage(kind, appointments, s.loc, s.cfg.AppointmentsURL)

	for _, recipient := range recipients {
		if s.allRecorded(ctx, kind, appointments, recipient.ID) {
			result.Skipped++
			continue
		}

		// Paced before every send: the limiter's initial token lets the
		// first one through immediately, every later one waits out the
		// full recipient delay.
		if err := s.sms.Pace(ctx); err != nil {
			log.Printf("Firing %s interrupted while pacing recipients: %v", kind, err)
			s.state.AddError(1)
			result.Status = RunInterrupted
			return result, nil
		}

		outcome := s.sms.Deliver(ctx, recipient.Phone, body)
		if outcome.Sent() {
			result.Sent++
			s.state.AddSent(1)
		} else {
			result.Failed++
			s.state.AddError(1)
		}

		s.recordBatch(ctx, kind, appointments, recipient, outcome)
	}

	result.Status = RunCompleted
	return result, nil
}

// allRecorded reports whether every appointment in the batch already has
// a ledger row for this recipient. A ledger read error counts as
// recorded: when in doubt we prefer a missed reminder over texting the
// whole sales floor twice.
func (s *ReminderService) allRecorded(ctx context.Context, kind models.ReminderKind, appointments []models.Appointment, userID uuid.UUID) bool {
	for _, a := range appointments {
		sent, err := s.ledger.WasSent(ctx, a.ID, kind, userID)
		if err != nil {
			log.Printf("Ledger check failed for appointment %s, user %s: %v; treating as already sent", a.ID, userID, err)
			continue
		}
		if !sent {
			return false
		}
	}
	return true
}

// recordBatch writes one ledger row per (appointment, recipient) pair.
// Duplicate rows from an earlier firing conflict away silently.
func (s *ReminderService) recordBatch(ctx context.Context, kind models.ReminderKind, appointments []models.Appointment, recipient models.User, outcome DeliveryOutcome) {
	now := s.now()
	phone, err := utils.NormalizePhone(recipient.Phone)
	if err != nil {
		phone = recipient.Phone
	}

	for _, a := range appointments {
		entry := &models.ReminderLog{
			AppointmentID: a.ID,
			Kind:          kind,
			UserID:        recipient.ID,
			Phone:         phone,
			Status:        outcome.Status,
			MessageSID:    outcome.MessageSID,
			ErrorMessage:  outcome.ErrorMessage,
			RemindFor:     a.ScheduledAt,
			SentAt:        now,
		}
		if err := s.ledger.RecordAttempt(ctx, entry); err != nil {
			log.Printf("Failed to record %s reminder for appointment %s, user %s: %v",
				kind, a.ID, recipient.ID, err)
		}
	}
}

// windowFor resolves the absolute-time window a firing of kind covers.
func (s *ReminderService) windowFor(kind models.ReminderKind) (time.Time, time.Time, error) {
	now := s.now()
	switch kind {
	case models.KindDayBefore:
		return utils.LocalDayWindow(now, 1, s.loc)
	case models.KindDayOf:
		return utils.LocalDayWindow(now, 0, s.loc)
	case models.KindOneHour:
		center := now.Add(s.cfg.LeadTime)
		return center.Add(-s.cfg.Tolerance), center.Add(s.cfg.Tolerance), nil
	}
	return time.Time{}, time.Time{}, ErrUnknownKind
}
