package repository

import (
	"context"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateAssignment(ctx context.Context, a *models.ItemAssignment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *Repository) DeleteAssignment(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ItemAssignment{}))
}

type assignmentRow struct {
	ID             string
	AssignedAt     time.Time
	ItemID         string
	ItemNumber     string
	ItemName       string
	ItemStatus     models.ItemStatus
	DepartmentName string
	UserID         string
	UserName       string
	UserEmail      string
	UserRole       models.UserRole
}

func (r *Repository) ListAssignments(ctx context.Context) ([]store.AssignmentView, error) {
	var rows []assignmentRow
	err := r.db.WithContext(ctx).
		Table("item_assignments AS a").
		Select(`a.id, a.assigned_at,
			i.id AS item_id, i.item_number, i.name AS item_name, i.status AS item_status,
			COALESCE(d.name, '') AS department_name,
			u.id AS user_id, u.name AS user_name, u.email AS user_email, u.role AS user_role`).
		Joins("JOIN items i ON i.id = a.item_id").
		Joins("JOIN users u ON u.id = a.user_id").
		Joins("LEFT JOIN departments d ON d.id = i.department_id").
		Order("a.assigned_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	views := make([]store.AssignmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, store.AssignmentView{
			ID:         row.ID,
			AssignedAt: row.AssignedAt,
			Item: store.AssignmentItem{
				ID:             row.ItemID,
				ItemNumber:     row.ItemNumber,
				Name:           row.ItemName,
				Status:         row.ItemStatus,
				DepartmentName: row.DepartmentName,
			},
			User: store.AssignmentUser{
				ID:    row.UserID,
				Name:  row.UserName,
				Email: row.UserEmail,
				Role:  row.UserRole,
			},
		})
	}
	return views, nil
}

func (r *Repository) AssignmentStats(ctx context.Context) (store.AssignmentStats, error) {
	var stats store.AssignmentStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Item{}).Count(&stats.TotalItems).Error; err != nil {
		return stats, translate(err)
	}
	if err := db.Model(&models.ItemAssignment{}).Count(&stats.TotalAssignments).Error; err != nil {
		return stats, translate(err)
	}
	if err := db.Model(&models.Item{}).
		Where("NOT EXISTS (SELECT 1 FROM item_assignments a WHERE a.item_id = items.id)").
		Count(&stats.UnassignedItems).Error; err != nil {
		return stats, translate(err)
	}
	stats.AssignedItems = stats.TotalItems - stats.UnassignedItems
	return stats, nil
}

func (r *Repository) ItemsForUser(ctx context.Context, userID string) ([]models.Item, error) {
	db := r.db.WithContext(ctx)
	assigned := db.Model(&models.ItemAssignment{}).Select("item_id").Where("user_id = ?", userID)

	var items []models.Item
	err := db.
		Preload("Department").
		Preload("Processes", func(db *gorm.DB) *gorm.DB {
			return db.Where("assigned_to_id = ?", userID).Order("sort_order ASC")
		}).
		Where("id IN (?)", assigned).
		Order("created_at DESC").
		Find(&items).Error
	return items, translate(err)
}
