// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for display snapshots (waiting-room boards). These reads are intentionally
// non-transactional: they are best-effort views, never inputs to
// state-changing decisions.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// QueueCounts holds per-status token totals for one queue.
type QueueCounts struct {
	Waiting int64
	Serving int64
	Served  int64
}

// QueueStats returns the per-status token counts for a queue in a single
// grouped query. Missing statuses simply report zero.
func QueueStats(ctx context.Context, db *gorm.DB, queueID string) (QueueCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Token{}).
		Select("status, COUNT(*) AS n").
		Where("queue_id = ?", queueID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return QueueCounts{}, err
	}

	var out QueueCounts
	for _, r := range rows {
		switch r.Status {
		case domain.StatusWaiting:
			out.Waiting = r.N
		case domain.StatusServing:
			out.Serving = r.N
		case domain.StatusServed:
			out.Served = r.N
		}
	}
	return out, nil
}
