package models

import "time"

type ProcessStatus string

const (
	ProcessNotStarted ProcessStatus = "NOT_STARTED"
	ProcessInProgress ProcessStatus = "IN_PROGRESS"
	ProcessCompleted  ProcessStatus = "COMPLETED"
	ProcessDelayed    ProcessStatus = "DELAYED"
)

var ProcessStatuses = []ProcessStatus{ProcessNotStarted, ProcessInProgress, ProcessCompleted, ProcessDelayed}

func (s ProcessStatus) Valid() bool {
	for _, v := range ProcessStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type DelayCategory string

const (
	DelayMaterialShortage DelayCategory = "MATERIAL_SHORTAGE"
	DelayMachineBreakdown DelayCategory = "MACHINE_BREAKDOWN"
	DelayManpower         DelayCategory = "MANPOWER"
	DelayQualityIssue     DelayCategory = "QUALITY_ISSUE"
	DelayOther            DelayCategory = "OTHER"
)

func (c DelayCategory) Valid() bool {
	switch c {
	case DelayMaterialShortage, DelayMachineBreakdown, DelayManpower, DelayQualityIssue, DelayOther:
		return true
	}
	return false
}

// Process is one ordered step of an item. Order is unique within the item.
type Process struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	Order        int           `gorm:"column:sort_order;not null;uniqueIndex:idx_process_item_order" json:"order"`
	Status       ProcessStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ItemID       string        `gorm:"size:36;not null;uniqueIndex:idx_process_item_order" json:"item_id"`
	MachineID    *string       `gorm:"size:64" json:"machine_id,omitempty"`
	AssignedToID *string       `gorm:"size:36;index" json:"assigned_to_id,omitempty"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	Item         *Item           `json:"item,omitempty"`
	Machine      *Machine        `gorm:"constraint:OnDelete:SET NULL" json:"machine,omitempty"`
	AssignedTo   *User           `gorm:"constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
	Updates      []ProcessUpdate `gorm:"constraint:OnDelete:CASCADE" json:"updates,omitempty"`
	DelayReasons []DelayReason   `gorm:"constraint:OnDelete:CASCADE" json:"delay_reasons,omitempty"`
}

// ProcessUpdate is the append-only audit trail of a process.
// A note is recorded with OldStatus == NewStatus. UserID is nil once the
// author has been deleted.
type ProcessUpdate struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	ProcessID string        `gorm:"size:36;not null;index" json:"process_id"`
	UserID    *string       `gorm:"size:36;index" json:"user_id"`
	OldStatus ProcessStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus ProcessStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	Comment   *string       `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	User *User `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

type DelayReason struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	ProcessID string        `gorm:"size:36;not null;index" json:"process_id"`
	Category  DelayCategory `gorm:"type:varchar(30);not null" json:"category"`
	Details   string        `gorm:"type:text" json:"details"`
	CreatedAt time.Time     `json:"created_at"`
}
