package models

// Session is the smallest unit of content. SessionNumber is unique within its module only.
type Session struct {
	ID            int    `gorm:"primaryKey" json:"id"`
	ModuleID      int    `gorm:"not null;uniqueIndex:idx_module_session" json:"module_id"`
	SessionNumber int    `gorm:"not null;uniqueIndex:idx_module_session" json:"session_number"`
	Title         string `gorm:"not null" json:"title"`
	Subtitle      string `json:"subtitle"`
}
