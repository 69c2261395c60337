package models

import (
	"time"

	"github.com/google/uuid"
)

type UserProgress struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_progress_session" json:"user_id"`
	SessionID            int        `gorm:"not null;uniqueIndex:idx_user_progress_session" json:"session_id"`
	CompletionPercentage int        `gorm:"not null;default:0" json:"completion_percentage"`
	CompletedAt          *time.Time `json:"completed_at"`
	LastAccessedAt       time.Time  `gorm:"index" json:"last_accessed_at"`
	QuizScore            *int       `json:"quiz_score"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// UserSessionProgress records where inside a session the user stopped reading.
type UserSessionProgress struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_session_progress" json:"user_id"`
	ModuleID             int       `gorm:"not null" json:"module_id"`
	SessionID            int       `gorm:"not null;uniqueIndex:idx_user_session_progress" json:"session_id"`
	LastSection          string    `json:"last_section"`
	LastSubsection       string    `json:"last_subsection"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	LastAccessed         time.Time `gorm:"index" json:"last_accessed"`
}

func (UserSessionProgress) TableName() string {
	return "user_session_progress"
}

// RecentActivity is a progress row joined with its session.
type RecentActivity struct {
	SessionID            int             `json:"session_id"`
	CompletionPercentage int             `json:"completion_percentage"`
	LastAccessedAt       time.Time       `json:"last_accessed_at"`
	Session              ActivitySession `json:"session"`
}

type ActivitySession struct {
	Title         string `json:"title"`
	ModuleID      int    `json:"module_id"`
	SessionNumber int    `json:"session_number"`
}

// ContinueSession backs the "continue where you left off" card.
type ContinueSession struct {
	ModuleID             int    `json:"module_id"`
	SessionID            int    `json:"session_id"`
	LastSection          string `json:"last_section"`
	LastSubsection       string `json:"last_subsection"`
	CompletionPercentage int    `json:"completion_percentage"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LoginHistory{},
		&Session{},
		&UserProgress{},
		&UserSessionProgress{},
	}
}
