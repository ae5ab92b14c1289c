package repository

import (
	"context"

	"prodtrack/internal/models"
	"prodtrack/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderProcesses(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func (r *Repository) CreateItem(ctx context.Context, item *models.Item) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error)
}

func (r *Repository) FindItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository) ItemDetail(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Processes", orderProcesses).
		Preload("Processes.Machine").
		Preload("Processes.AssignedTo").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_at DESC")
		}).
		Preload("Assignments.User").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Notes.User").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context, filter store.ItemFilter) ([]models.Item, error) {
	query := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Processes", orderProcesses)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}

	var items []models.Item
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *Repository) SetItemStatus(ctx context.Context, id string, status models.ItemStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Update("status", status))
}

func (r *Repository) SetItemOutput(ctx context.Context, id string, output int) error {
	return affected(r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Update("current_output", output))
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}

		var processIDs []string
		if err := tx.Model(&models.Process{}).Where("item_id = ?", id).Pluck("id", &processIDs).Error; err != nil {
			return err
		}
		if len(processIDs) > 0 {
			if err := tx.Where("process_id IN ?", processIDs).Delete(&models.ProcessUpdate{}).Error; err != nil {
				return err
			}
			if err := tx.Where("process_id IN ?", processIDs).Delete(&models.DelayReason{}).Error; err != nil {
				return err
			}
		}

		for _, owned := range []interface{}{&models.Process{}, &models.ItemAssignment{}, &models.Note{}} {
			if err := tx.Where("item_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&item).Error
	}))
}

func (r *Repository) CreateNote(ctx context.Context, note *models.Note) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error)
}
