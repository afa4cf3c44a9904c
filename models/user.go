package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a member of the sales team. Accounts are managed by the main
// DMS; this service reads them to resolve reminder recipients. A user
// receives reminders only when NotifySMS is set and Phone is non-empty.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key"`
	Email string    `gorm:"uniqueIndex;not null"`
	Name  string    `gorm:"not null"`
	Phone string

	Role      string `gorm:"type:varchar(20);not null"` // 'manager' or 'sales'
	NotifySMS bool   `gorm:"default:false"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
