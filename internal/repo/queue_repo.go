// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Queue model,
// including the conflict-safe day-queue upsert and the atomic sequence claim
// used by the token sequencer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// StartOfDay strips the time-of-day component so that every request within a
// calendar day converges on the same queue row. Dates are kept in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EnsureQueue finds or creates the queue for (departmentID, day). The insert
// uses ON CONFLICT (department_id, date) DO NOTHING so that two callers racing
// on the first request of the day produce exactly one row; the loser of the
// race re-reads the winner's row. The day argument must already be normalized
// via StartOfDay.
//
// Issuing the insert first also makes any surrounding SQLite transaction a
// write transaction from its first statement, which keeps the sequencer's
// read-modify-write cycle serialized against concurrent issuers.
func EnsureQueue(ctx context.Context, db *gorm.DB, departmentID string, day time.Time) (*domain.Queue, error) {
	q := &domain.Queue{
		ID:                 uuid.NewString(),
		DepartmentID:       departmentID,
		Date:               day,
		CurrentTokenNumber: 0,
		IsPaused:           false,
		CreatedAt:          time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "department_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(q).Error
	if err != nil && !IsDuplicate(err) {
		return nil, err
	}

	// Re-read: either our row or the one that won the race.
	var out domain.Queue
	err = db.WithContext(ctx).
		Where("department_id = ? AND date = ?", departmentID, day).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQueue fetches a queue by ID, or ErrNotFound if missing.
func GetQueue(ctx context.Context, db *gorm.DB, id string) (*domain.Queue, error) {
	var q domain.Queue
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQueueByDay fetches the queue for (departmentID, day) without creating it.
func GetQueueByDay(ctx context.Context, db *gorm.DB, departmentID string, day time.Time) (*domain.Queue, error) {
	var q domain.Queue
	err := db.WithContext(ctx).
		Where("department_id = ? AND date = ?", departmentID, day).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ClaimNextSequence atomically increments the queue's high-water mark and
// returns the claimed sequence number. The single UPDATE … RETURNING statement
// is the serialization point of token issuance: no two callers can observe the
// same value, regardless of how their transactions interleave.
func ClaimNextSequence(ctx context.Context, db *gorm.DB, queueID string) (int, error) {
	var next int
	res := db.WithContext(ctx).Raw(
		`UPDATE queues
		    SET current_token_number = current_token_number + 1,
		        updated_at = ?
		  WHERE id = ?
		  RETURNING current_token_number`,
		time.Now().UTC(), queueID,
	).Scan(&next)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return next, nil
}

// SetQueuePaused flips the paused flag. If no rows are affected (queue
// missing), it returns ErrNotFound.
func SetQueuePaused(ctx context.Context, db *gorm.DB, id string, paused bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Queue{}).
		Where("id = ?", id).
		Update("is_paused", paused)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
