package models

import "time"

type AuditLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID *string `gorm:"size:36;index" json:"user_id"`
	User   *User   `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "item", "assignment", "user"
	EntityID string `gorm:"size:36" json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "status_change", ...
	Details  string `gorm:"type:text" json:"details"`
}
