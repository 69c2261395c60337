package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User ids are UUIDs, as issued by the hosted auth provider.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:user" json:"role"` // user, admin
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type LoginHistory struct {
	gorm.Model
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	LoginTime time.Time
	IP        string
	UserAgent string
}
