package models

import (
	"math"
	"time"
)

type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
	ItemDelayed    ItemStatus = "DELAYED"
	ItemCancelled  ItemStatus = "CANCELLED"
)

var ItemStatuses = []ItemStatus{ItemPending, ItemInProgress, ItemCompleted, ItemDelayed, ItemCancelled}

func (s ItemStatus) Valid() bool {
	for _, v := range ItemStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Item is a production job. CurrentOutput may exceed TargetOutput.
type Item struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	ItemNumber    string     `gorm:"uniqueIndex;size:64;not null" json:"item_number"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Type          string     `gorm:"size:100;not null" json:"type"`
	Customer      string     `gorm:"size:255;not null" json:"customer"`
	Color         *string    `gorm:"size:100" json:"color,omitempty"`
	Quantity      int        `gorm:"not null" json:"quantity"`
	TargetOutput  int        `gorm:"not null" json:"target_output"`
	CurrentOutput int        `gorm:"not null;default:0" json:"current_output"`
	Deadline      time.Time  `gorm:"not null" json:"deadline"`
	Status        ItemStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DepartmentID  string     `gorm:"size:36;not null;index" json:"department_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Department  *Department      `json:"department,omitempty"`
	Processes   []Process        `gorm:"constraint:OnDelete:CASCADE" json:"processes,omitempty"`
	Assignments []ItemAssignment `gorm:"constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Notes       []Note           `gorm:"constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// ItemAssignment links a user to an item; the pair is unique.
type ItemAssignment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ItemID     string    `gorm:"size:36;not null;uniqueIndex:idx_item_assignment_pair" json:"item_id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_item_assignment_pair;index" json:"user_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`

	Item *Item `json:"item,omitempty"`
	User *User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ItemID    string    `gorm:"size:36;not null;index" json:"item_id"`
	UserID    *string   `gorm:"size:36;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

// Percent returns part/whole as a rounded percentage, 0 when whole is not positive.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// OutputProgress is not capped at 100; output may overshoot the target.
func (i *Item) OutputProgress() int {
	return Percent(i.CurrentOutput, i.TargetOutput)
}

// CompletedProcesses counts loaded processes in COMPLETED.
func (i *Item) CompletedProcesses() int {
	n := 0
	for _, p := range i.Processes {
		if p.Status == ProcessCompleted {
			n++
		}
	}
	return n
}

func (i *Item) ProcessProgress() int {
	return Percent(i.CompletedProcesses(), len(i.Processes))
}
