package models

type DepartmentType string

const (
	DepartmentCardboard  DepartmentType = "CARDBOARD"
	DepartmentManual     DepartmentType = "MANUAL"
	DepartmentLabel      DepartmentType = "LABEL"
	DepartmentBookbind   DepartmentType = "BOOKBIND"
	DepartmentOtherItems DepartmentType = "OTHER_ITEMS"
)

// Department and Machine are reference data, seeded at startup.
type Department struct {
	ID   string         `gorm:"primaryKey;size:36" json:"id"`
	Name string         `gorm:"size:255;not null" json:"name"`
	Type DepartmentType `gorm:"type:varchar(30);not null" json:"type"`
}

type Machine struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Type         string `gorm:"size:100;not null" json:"type"`
	DepartmentID string `gorm:"size:36;not null;index" json:"department_id"`

	Department *Department `json:"department,omitempty"`
}
