package store

import (
	"time"

	"prodtrack/internal/models"
)

type AssignmentItem struct {
	ID             string            `json:"id"`
	ItemNumber     string            `json:"item_number"`
	Name           string            `json:"name"`
	Status         models.ItemStatus `json:"status"`
	DepartmentName string            `json:"department_name"`
}

type AssignmentUser struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// AssignmentView is an assignment joined with item and user projections.
type AssignmentView struct {
	ID         string         `json:"id"`
	AssignedAt time.Time      `json:"assigned_at"`
	Item       AssignmentItem `json:"item"`
	User       AssignmentUser `json:"user"`
}

type AssignmentStats struct {
	TotalItems       int64 `json:"total_items"`
	TotalAssignments int64 `json:"total_assignments"`
	AssignedItems    int64 `json:"assigned_items"`
	UnassignedItems  int64 `json:"unassigned_items"`
}

type ItemCounts struct {
	Total    int64                       `json:"total"`
	ByStatus map[models.ItemStatus]int64 `json:"by_status"`
	// Overdue counts items past their deadline that are not completed.
	Overdue int64 `json:"overdue"`
}

type DepartmentCount struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Items        int64  `json:"items"`
}

type EmployeeCounts struct {
	AssignedItems      int64 `json:"assigned_items"`
	ActiveProcesses    int64 `json:"active_processes"`
	CompletedProcesses int64 `json:"completed_processes"`
}
