// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Token model.
//
// The conditional status updates (MarkServing, MarkServed) are the building
// blocks of the serving state machine: each carries the expected current
// status in its WHERE clause and reports a zero RowsAffected result as
// ErrNotFound, which the service layer treats as a lost race and re-runs the
// whole selection.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// CreateTokenInput carries the fields needed to persist a new token row.
// Sequence and number are computed by the sequencer, not by callers.
type CreateTokenInput struct {
	QueueID      string
	TokenNumber  string
	Sequence     int
	PatientName  string
	PatientPhone string
	PatientAge   *int
	VisitReason  string
	IsPriority   bool
}

// CreateToken inserts a token row with status WAITING. A violation of the
// (queue_id, token_sequence) unique index is normalized to ErrDuplicate so the
// sequencer can re-run its transaction.
func CreateToken(ctx context.Context, db *gorm.DB, in CreateTokenInput) (*domain.Token, error) {
	t := &domain.Token{
		ID:            uuid.NewString(),
		QueueID:       in.QueueID,
		TokenNumber:   in.TokenNumber,
		TokenSequence: in.Sequence,
		PatientName:   in.PatientName,
		PatientPhone:  in.PatientPhone,
		PatientAge:    in.PatientAge,
		VisitReason:   in.VisitReason,
		IsPriority:    in.IsPriority,
		Status:        domain.StatusWaiting,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return t, nil
}

// GetToken fetches a token by ID, or ErrNotFound if missing.
func GetToken(ctx context.Context, db *gorm.DB, id string) (*domain.Token, error) {
	var t domain.Token
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ServingTokenAtCounter returns the token currently in SERVING state at the
// given counter of a queue, or (nil, nil) when the counter is idle.
func ServingTokenAtCounter(ctx context.Context, db *gorm.DB, queueID, counterID string) (*domain.Token, error) {
	var t domain.Token
	err := db.WithContext(ctx).
		Where("queue_id = ? AND counter_id = ? AND status = ?", queueID, counterID, domain.StatusServing).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NextWaitingToken returns the next eligible WAITING token of a queue:
// priority tokens first, then FIFO by sequence. Ties are impossible because
// the sequence is unique within a queue. Returns (nil, nil) when the queue is
// drained.
func NextWaitingToken(ctx context.Context, db *gorm.DB, queueID string) (*domain.Token, error) {
	var t domain.Token
	err := db.WithContext(ctx).
		Where("queue_id = ? AND status = ?", queueID, domain.StatusWaiting).
		Order("is_priority desc").
		Order("token_sequence asc").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkServing transitions a WAITING token to SERVING, stamps serving_at, and
// assigns the counter. The WHERE clause re-checks the WAITING status so a
// token claimed by a concurrent caller yields RowsAffected == 0, surfaced as
// ErrNotFound.
func MarkServing(ctx context.Context, db *gorm.DB, tokenID, counterID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("id = ? AND status = ?", tokenID, domain.StatusWaiting).
		Updates(map[string]interface{}{
			"status":     domain.StatusServing,
			"serving_at": at,
			"counter_id": counterID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkServed transitions a SERVING token to SERVED and stamps served_at.
// Returns ErrNotFound when the token is no longer in SERVING state.
func MarkServed(ctx context.Context, db *gorm.DB, tokenID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("id = ? AND status = ?", tokenID, domain.StatusServing).
		Updates(map[string]interface{}{
			"status":    domain.StatusServed,
			"served_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountTokens returns the total number of tokens in a queue.
func CountTokens(ctx context.Context, db *gorm.DB, queueID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("queue_id = ?", queueID).
		Count(&total).Error
	return total, err
}

// ListTokensPage returns a page of a queue's tokens in issuance order.
// Use CountTokens to obtain the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListTokensPage(ctx context.Context, db *gorm.DB, queueID string, offset, limit int) ([]domain.Token, error) {
	var out []domain.Token
	err := db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("token_sequence asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListTokensByStatus returns all tokens of a queue in a given status, in
// sequence order. Used by display snapshots and tests.
func ListTokensByStatus(ctx context.Context, db *gorm.DB, queueID, status string) ([]domain.Token, error) {
	var out []domain.Token
	err := db.WithContext(ctx).
		Where("queue_id = ? AND status = ?", queueID, status).
		Order("token_sequence asc").
		Find(&out).Error
	return out, err
}
