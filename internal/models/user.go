package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEncoder  UserRole = "ENCODER"
	RoleEmployee UserRole = "EMPLOYEE"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEncoder, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	DepartmentID *string   `gorm:"size:36;index" json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department *Department `gorm:"constraint:OnDelete:SET NULL" json:"department,omitempty"`
}

// AuthorID is the reference stored on history rows. History outlives its
// author, so the column is nullable.
func AuthorID(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}
