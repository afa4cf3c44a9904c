// services/stores.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
)

// Source interfaces the trigger scheduler runs against. The GORM
// implementations below are production; tests swap in fakes.

type AppointmentSource interface {
	// AppointmentsBetween returns appointments scheduled in
	// [start, end] inclusive, ordered by scheduled instant ascending.
	AppointmentsBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
}

type RecipientSource interface {
	// OptedInRecipients returns every active user with SMS reminders
	// enabled and a phone number on file.
	OptedInRecipients(ctx context.Context) ([]models.User, error)
}

type ReminderLedger interface {
	// WasSent reports whether a ReminderLog already exists for the
	// (appointment, kind, user) triple.
	WasSent(ctx context.Context, appointmentID uuid.UUID, kind models.ReminderKind, userID uuid.UUID) (bool, error)
	// RecordAttempt inserts one ledger row. A duplicate composite key
	// is dropped silently: the row that got there first wins.
	RecordAttempt(ctx context.Context, entry *models.ReminderLog) error
	// ListRecent returns ledger rows newest first, for the admin log view.
	ListRecent(ctx context.Context, limit, offset int) ([]models.ReminderLog, error)
	// Ready reports whether the ledger's database is reachable.
	Ready(ctx context.Context) bool
}

// callTimeout bounds every store round-trip so a stuck database cannot
// wedge a firing indefinitely.
const callTimeout = 10 * time.Second

type GormAppointmentStore struct {
	db *gorm.DB
}

func NewGormAppointmentStore(db *gorm.DB) *GormAppointmentStore {
	return &GormAppointmentStore{db: db}
}

func (s *GormAppointmentStore) AppointmentsBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("scheduled_at BETWEEN ? AND ?", start, end).
		Order("scheduled_at asc").
		Find(&appointments).Error
	return appointments, err
}

type GormRecipientStore struct {
	db *gorm.DB
}

func NewGormRecipientStore(db *gorm.DB) *GormRecipientStore {
	return &GormRecipientStore{db: db}
}

func (s *GormRecipientStore) OptedInRecipients(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("notify_sms = ? AND is_active = ? AND phone <> ''", true, true).
		Find(&users).Error
	return users, err
}

type GormReminderLedger struct {
	db *gorm.DB
}

func NewGormReminderLedger(db *gorm.DB) *GormReminderLedger {
	return &GormReminderLedger{db: db}
}

func (l *GormReminderLedger) WasSent(ctx context.Context, appointmentID uuid.UUID, kind models.ReminderKind, userID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var count int64
	err := l.db.WithContext(ctx).Model(&models.ReminderLog{}).
		Where("appointment_id = ? AND kind = ? AND user_id = ?", appointmentID, kind, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *GormReminderLedger) RecordAttempt(ctx context.Context, entry *models.ReminderLog) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	// ON CONFLICT DO NOTHING on the dedup index: two overlapping
	// firings both reach here, one row survives, neither errors.
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
}

func (l *GormReminderLedger) ListRecent(ctx context.Context, limit, offset int) ([]models.ReminderLog, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var logs []models.ReminderLog
	err := l.db.WithContext(ctx).
		Order("sent_at desc").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (l *GormReminderLedger) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	sqlDB, err := l.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
