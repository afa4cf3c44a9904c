// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderKind is one of the three reminder schedules. Each kind is its
// own dedup namespace: an appointment can produce at most one ReminderLog
// per kind per recipient.
type ReminderKind string

const (
	KindDayBefore ReminderKind = "day_before"
	KindDayOf     ReminderKind = "day_of"
	KindOneHour   ReminderKind = "one_hour"
)

func (k ReminderKind) Valid() bool {
	switch k {
	case KindDayBefore, KindDayOf, KindOneHour:
		return true
	}
	return false
}

// Delivery outcome recorded on a ReminderLog.
const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderLog records one reminder delivery attempt. The unique index on
// (appointment_id, kind, user_id) is the dedup ledger: a second insert for
// the same triple is dropped by the database, which is what makes
// overlapping or repeated trigger firings safe. Rows are never updated or
// deleted by this service.
type ReminderLog struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	AppointmentID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_dedup,priority:1"`
	Kind          ReminderKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_reminder_dedup,priority:2"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_dedup,priority:3"`

	Phone        string    `gorm:"type:varchar(20)"` // number the SMS was addressed to
	Status       string    `gorm:"type:varchar(20)"` // sent, failed
	MessageSID   string    `gorm:"type:varchar(64)"` // transport message id, if any
	ErrorMessage string    `gorm:"type:text"`
	RemindFor    time.Time // the appointment instant the reminder was for
	SentAt       time.Time

	gorm.Model
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
