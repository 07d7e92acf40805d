// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Department
// and Counter models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations are normalized to ErrDuplicate.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// CreateDepartment inserts a new Department row with UUID primary key and UTC
// timestamp. The caller is expected to have normalized the code (uppercase,
// trimmed). Returns ErrDuplicate when the code is already taken.
func CreateDepartment(ctx context.Context, db *gorm.DB, name, code string, avgServiceMinutes int) (*domain.Department, error) {
	d := &domain.Department{
		ID:                    uuid.NewString(),
		Name:                  name,
		Code:                  code,
		AvgServiceTimeMinutes: avgServiceMinutes,
		IsActive:              true,
		CreatedAt:             time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return d, nil
}

// GetDepartment fetches a department by ID, or ErrNotFound if missing.
func GetDepartment(ctx context.Context, db *gorm.DB, id string) (*domain.Department, error) {
	var d domain.Department
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDepartmentByCode fetches a department by its unique short code.
func GetDepartmentByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Department, error) {
	var d domain.Department
	if err := db.WithContext(ctx).Where("code = ?", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDepartments returns all departments ordered by code.
func ListDepartments(ctx context.Context, db *gorm.DB) ([]domain.Department, error) {
	var out []domain.Department
	err := db.WithContext(ctx).Order("code asc").Find(&out).Error
	return out, err
}

// SetDepartmentActive flips the active flag of a department. If no rows are
// affected (department missing), it returns ErrNotFound.
func SetDepartmentActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Department{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateCounter inserts a new service counter under a department. The counter
// number must be unique per department; ErrDuplicate is returned otherwise.
func CreateCounter(ctx context.Context, db *gorm.DB, departmentID string, number int, code string) (*domain.Counter, error) {
	c := &domain.Counter{
		ID:            uuid.NewString(),
		DepartmentID:  departmentID,
		CounterNumber: number,
		CounterCode:   code,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetCounter fetches a counter by ID, or ErrNotFound if missing.
func GetCounter(ctx context.Context, db *gorm.DB, id string) (*domain.Counter, error) {
	var c domain.Counter
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCounters returns all counters of a department ordered by counter number.
func ListCounters(ctx context.Context, db *gorm.DB, departmentID string) ([]domain.Counter, error) {
	var out []domain.Counter
	err := db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("counter_number asc").
		Find(&out).Error
	return out, err
}

// FirstActiveCounter returns the lowest-numbered active counter of a
// department. The token sequencer uses it to format counter-qualified token
// numbers. Returns ErrNotFound when the department has no active counter.
func FirstActiveCounter(ctx context.Context, db *gorm.DB, departmentID string) (*domain.Counter, error) {
	var c domain.Counter
	err := db.WithContext(ctx).
		Where("department_id = ? AND is_active = ?", departmentID, true).
		Order("counter_number asc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
