// Package services – QueueService
//
// This file implements the queue registry and the staff-facing pause/resume
// controls. The registry resolves (department, day) pairs to queue rows,
// creating them lazily on the first token request of a day; the uniqueness of
// that pair is a schema constraint, so concurrent first calls converge on one
// row. Snapshot provides the eventually-consistent view used by display
// boards — it is never an input to state-changing decisions.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueueService owns queue lifecycle and pause state.
type QueueService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Now returns the current time; overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// NewQueueService constructs a QueueService.
func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{DB: db}
}

func (s *QueueService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// QueueSnapshot is a best-effort view of one queue for display boards.
type QueueSnapshot struct {
	Queue                *domain.Queue `json:"queue"`
	DepartmentCode       string        `json:"department_code"`
	Waiting              int64         `json:"waiting"`
	Serving              int64         `json:"serving"`
	Served               int64         `json:"served"`
	EstimatedWaitMinutes int64         `json:"estimated_wait_minutes"`
}

// GetOrCreate resolves the queue for (departmentID, at's calendar day),
// creating it with a zero high-water mark when absent. Calling it twice with
// the same department and day returns the same queue row. The department must
// exist and be active.
func (s *QueueService) GetOrCreate(ctx context.Context, departmentID string, at time.Time) (*domain.Queue, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "GetOrCreate",
		trace.WithAttributes(attribute.String("department.id", departmentID)),
	)
	defer span.End()

	dept, err := repo.GetDepartment(ctx, s.DB, departmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, ErrInactiveDepartment
	}

	return repo.EnsureQueue(ctx, s.DB, dept.ID, repo.StartOfDay(at))
}

// Today is GetOrCreate for the current day.
func (s *QueueService) Today(ctx context.Context, departmentID string) (*domain.Queue, error) {
	return s.GetOrCreate(ctx, departmentID, s.now())
}

// Pause blocks call-next on a queue until Resume. Token creation continues.
// Requires the update permission.
func (s *QueueService) Pause(ctx context.Context, id Identity, queueID string) error {
	return s.setPaused(ctx, id, queueID, true)
}

// Resume lifts a pause set by Pause. Requires the update permission.
func (s *QueueService) Resume(ctx context.Context, id Identity, queueID string) error {
	return s.setPaused(ctx, id, queueID, false)
}

func (s *QueueService) setPaused(ctx context.Context, id Identity, queueID string, paused bool) error {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "SetPaused",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.Bool("paused", paused),
			attribute.String("user.id", id.UserID),
		),
	)
	defer span.End()

	if err := requirePermission(id, PermUpdate); err != nil {
		return err
	}
	err := repo.SetQueuePaused(ctx, s.DB, queueID, paused)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrQueueNotFound
	}
	return err
}

// Snapshot returns the queue together with per-status token counts and a
// rough wait estimate (waiting × department average service time). The reads
// are non-transactional; treat the result as a display snapshot, not as
// authoritative state.
func (s *QueueService) Snapshot(ctx context.Context, queueID string) (*QueueSnapshot, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Snapshot",
		trace.WithAttributes(attribute.String("queue.id", queueID)),
	)
	defer span.End()

	queue, err := repo.GetQueue(ctx, s.DB, queueID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrQueueNotFound
	}
	if err != nil {
		return nil, err
	}

	dept, err := repo.GetDepartment(ctx, s.DB, queue.DepartmentID)
	if err != nil {
		return nil, err
	}

	counts, err := repo.QueueStats(ctx, s.DB, queue.ID)
	if err != nil {
		return nil, err
	}

	return &QueueSnapshot{
		Queue:                queue,
		DepartmentCode:       dept.Code,
		Waiting:              counts.Waiting,
		Serving:              counts.Serving,
		Served:               counts.Served,
		EstimatedWaitMinutes: counts.Waiting * int64(dept.AvgServiceTimeMinutes),
	}, nil
}
