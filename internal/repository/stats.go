package repository

import (
	"context"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

type statusCount struct {
	Status models.ItemStatus
	Count  int64
}

func (r *Repository) ItemCounts(ctx context.Context, now time.Time) (store.ItemCounts, error) {
	counts := store.ItemCounts{ByStatus: map[models.ItemStatus]int64{}}
	db := r.db.WithContext(ctx)

	var rows []statusCount
	if err := db.Model(&models.Item{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return counts, translate(err)
	}
	for _, row := range rows {
		counts.ByStatus[row.Status] = row.Count
		counts.Total += row.Count
	}

	if err := db.Model(&models.Item{}).
		Where("deadline < ? AND status <> ?", now, models.ItemCompleted).
		Count(&counts.Overdue).Error; err != nil {
		return counts, translate(err)
	}
	return counts, nil
}

func (r *Repository) ItemsByDepartment(ctx context.Context) ([]store.DepartmentCount, error) {
	var rows []store.DepartmentCount
	err := r.db.WithContext(ctx).
		Table("departments AS d").
		Select("d.id AS department_id, d.name, COUNT(i.id) AS items").
		Joins("LEFT JOIN items i ON i.department_id = d.id").
		Group("d.id, d.name").
		Order("d.name ASC").
		Scan(&rows).Error
	return rows, translate(err)
}

func (r *Repository) RecentItems(ctx context.Context, limit int, byUpdated bool) ([]models.Item, error) {
	order := "created_at DESC"
	if byUpdated {
		order = "updated_at DESC"
	}
	var items []models.Item
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order(order).
		Limit(limit).
		Find(&items).Error
	return items, translate(err)
}

func (r *Repository) EmployeeCounts(ctx context.Context, userID string) (store.EmployeeCounts, error) {
	var counts store.EmployeeCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.ItemAssignment{}).Where("user_id = ?", userID).Count(&counts.AssignedItems).Error; err != nil {
		return counts, translate(err)
	}
	if err := db.Model(&models.Process{}).
		Where("assigned_to_id = ? AND status IN ?", userID, []models.ProcessStatus{models.ProcessNotStarted, models.ProcessInProgress}).
		Count(&counts.ActiveProcesses).Error; err != nil {
		return counts, translate(err)
	}
	if err := db.Model(&models.Process{}).
		Where("assigned_to_id = ? AND status = ?", userID, models.ProcessCompleted).
		Count(&counts.CompletedProcesses).Error; err != nil {
		return counts, translate(err)
	}
	return counts, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, translate(err)
}

func (r *Repository) CountDepartments(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Department{}).Count(&n).Error
	return n, translate(err)
}
