package user

import (
	"time"

	"github.com/google/uuid"
)

// User owns scans through scan_result.user_id. ScansAll is filled from that
// column on read and never persisted on its own.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"emailId"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"firstName"`
	LastName  string    `gorm:"column:last_name" json:"lastName,omitempty"`

	ScansAll []uuid.UUID `gorm:"-" json:"scansAll"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

// Public is the reduced view returned by register/login/check.
type Public struct {
	ID        uuid.UUID `json:"_id"`
	FirstName string    `json:"firstName"`
	EmailID   string    `json:"emailId"`
}

func (u *User) Public() Public {
	if u == nil {
		return Public{}
	}
	return Public{ID: u.ID, FirstName: u.FirstName, EmailID: u.Email}
}
