package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses. Everything other than "scheduled" is called out
// explicitly in reminder messages.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// Appointment is a sales appointment (test drive, viewing) owned by the
// main DMS. This service only reads them; ScheduledAt is the sole timing
// reference for every reminder window.
type Appointment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	CustomerName  string     `gorm:"not null"`
	CustomerPhone string     `gorm:"not null"`
	ScheduledAt   time.Time  `gorm:"index;not null"`
	Status        string     `gorm:"type:varchar(20);default:'scheduled'"` // scheduled, confirmed, completed, cancelled, no_show
	Notes         string     `gorm:"type:text"`
	InterestTags  StringList `gorm:"type:jsonb"` // vehicles of interest, e.g. ["2021 Civic", "Accord EX"]

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Custom JSONB type for tag lists
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}
