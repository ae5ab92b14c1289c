package repository

import (
	"context"

	"prodtrack/internal/models"

	"gorm.io/gorm/clause"
)

// SaveDepartment inserts d unless a department with the same id exists.
func (r *Repository) SaveDepartment(ctx context.Context, d *models.Department) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(d).Error)
}

// SaveMachine inserts m unless a machine with the same id exists.
func (r *Repository) SaveMachine(ctx context.Context, m *models.Machine) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error)
}

func (r *Repository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, translate(err)
}

func (r *Repository) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *Repository) ListMachines(ctx context.Context, departmentID string) ([]models.Machine, error) {
	query := r.db.WithContext(ctx).Preload("Department")
	if departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	var machines []models.Machine
	err := query.Order("department_id ASC, name ASC").Find(&machines).Error
	return machines, translate(err)
}

func (r *Repository) FindMachine(ctx context.Context, id string) (*models.Machine, error) {
	var m models.Machine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}
