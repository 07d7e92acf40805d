// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides an idempotent demo-data seed and its
// teardown, used by local development and the admin demo-reset endpoint.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// demoDepartments are the departments (and one counter each) installed by
// SeedDemo. Codes are also used by DeleteDemoData to find what to remove.
var demoDepartments = []struct {
	Name       string
	Code       string
	AvgMinutes int
	Counter    string
}{
	{"Outpatient Department", "OPD", 15, "A"},
	{"Radiology / X-Ray", "XRAY", 10, "B"},
}

// SeedDemo installs the demo departments and counters. It is idempotent:
// existing rows are left untouched via ON CONFLICT DO NOTHING, so it is safe
// to run on every startup.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	now := time.Now().UTC()
	for _, d := range demoDepartments {
		dept := &domain.Department{
			ID:                    uuid.NewString(),
			Name:                  d.Name,
			Code:                  d.Code,
			AvgServiceTimeMinutes: d.AvgMinutes,
			IsActive:              true,
			CreatedAt:             now,
		}
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).
			Create(dept).Error
		if err != nil && !IsDuplicate(err) {
			return err
		}

		existing, err := GetDepartmentByCode(ctx, db, d.Code)
		if err != nil {
			return err
		}

		counter := &domain.Counter{
			ID:            uuid.NewString(),
			DepartmentID:  existing.ID,
			CounterNumber: 1,
			CounterCode:   d.Counter,
			IsActive:      true,
			CreatedAt:     now,
		}
		err = db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "department_id"}, {Name: "counter_number"}},
				DoNothing: true,
			}).
			Create(counter).Error
		if err != nil && !IsDuplicate(err) {
			return err
		}
	}
	return nil
}

// DeleteDemoData removes the demo departments seeded by SeedDemo, together
// with their counters, queues, and tokens (via foreign-key cascades). Missing
// departments are skipped, so teardown is idempotent too.
func DeleteDemoData(ctx context.Context, db *gorm.DB) error {
	for _, d := range demoDepartments {
		dept, err := GetDepartmentByCode(ctx, db, d.Code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := db.WithContext(ctx).Delete(&domain.Department{}, "id = ?", dept.ID).Error; err != nil {
			return err
		}
	}
	return nil
}
