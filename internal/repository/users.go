package repository

import (
	"context"

	"prodtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (r *Repository) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Department").Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Department").Order("name ASC").Find(&users).Error
	return users, translate(err)
}

func (r *Repository) UpdateUser(ctx context.Context, id string, name string, role models.UserRole, departmentID *string) error {
	var dept interface{}
	if departmentID != nil {
		dept = *departmentID
	}
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":          name,
		"role":          role,
		"department_id": dept,
	}))
}

func (r *Repository) UpdateProfile(ctx context.Context, id, name, email string) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":  name,
		"email": email,
	}))
}

func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash))
}

// DeleteUser detaches the user's processes and history rows, then removes the
// user. Assignments cascade.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Process{}).Where("assigned_to_id = ?", id).Update("assigned_to_id", nil).Error; err != nil {
			return err
		}
		// also covers schemas migrated while these foreign keys still cascaded
		for _, history := range []interface{}{&models.ProcessUpdate{}, &models.Note{}, &models.AuditLog{}} {
			if err := tx.Model(history).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
				return err
			}
		}
		return affected(tx.Where("id = ?", id).Delete(&models.User{}))
	}))
}
