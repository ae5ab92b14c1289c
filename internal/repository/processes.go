package repository

import (
	"context"

	"prodtrack/internal/models"
	"prodtrack/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateProcess(ctx context.Context, p *models.Process) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the item lock serialises order allocation
		var item models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", p.ItemID).First(&item).Error; err != nil {
			return err
		}

		var last int
		if err := tx.Model(&models.Process{}).
			Where("item_id = ?", p.ItemID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		p.Order = last + 1

		return tx.Omit(clause.Associations).Create(p).Error
	}))
}

func (r *Repository) FindProcess(ctx context.Context, id string) (*models.Process, error) {
	var p models.Process
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *Repository) MutateProcess(ctx context.Context, id string, fn store.ProcessMutator) (*models.Process, error) {
	var p models.Process
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}

		change, err := fn(&p)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		if change.Delay != nil {
			if err := tx.Omit(clause.Associations).Create(change.Delay).Error; err != nil {
				return err
			}
		}
		if change.Update != nil {
			if err := tx.Omit(clause.Associations).Create(change.Update).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *Repository) AppendProcessUpdate(ctx context.Context, u *models.ProcessUpdate) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (r *Repository) SetProcessAssignee(ctx context.Context, id string, userID *string) error {
	var value interface{}
	if userID != nil {
		value = *userID
	}
	return affected(r.db.WithContext(ctx).Model(&models.Process{}).Where("id = ?", id).Update("assigned_to_id", value))
}

func (r *Repository) ProcessUpdates(ctx context.Context, processID string) ([]models.ProcessUpdate, error) {
	var updates []models.ProcessUpdate
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("process_id = ?", processID).
		Order("created_at DESC").
		Find(&updates).Error
	return updates, translate(err)
}

func (r *Repository) DelayReasons(ctx context.Context, processID string) ([]models.DelayReason, error) {
	var reasons []models.DelayReason
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("created_at DESC").
		Find(&reasons).Error
	return reasons, translate(err)
}

func (r *Repository) ProcessesForUser(ctx context.Context, userID string) ([]models.Process, error) {
	var processes []models.Process
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Item.Department").
		Preload("Machine").
		Where("assigned_to_id = ?", userID).
		Order("sort_order ASC").
		Find(&processes).Error
	return processes, translate(err)
}
