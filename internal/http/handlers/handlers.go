// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts the handlers depend on and the
// Handlers aggregate that the router wires up. Handlers are transport-thin:
// they bind and validate payloads, resolve the caller identity, delegate to
// application services, and translate service errors into HTTP results via
// failService.
package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/services"
)

// DepartmentAPI is the administrative surface for departments and counters.
type DepartmentAPI interface {
	// Create registers a new department (create permission).
	Create(ctx context.Context, id services.Identity, name, code string, avgServiceMinutes int) (*domain.Department, error)
	// List returns all departments ordered by code.
	List(ctx context.Context) ([]domain.Department, error)
	// Get returns one department.
	Get(ctx context.Context, departmentID string) (*domain.Department, error)
	// SetActive flips the active flag (delete permission).
	SetActive(ctx context.Context, id services.Identity, departmentID string, active bool) error
	// AddCounter creates a service counter (create permission).
	AddCounter(ctx context.Context, id services.Identity, departmentID string, number int, code string) (*domain.Counter, error)
	// Counters lists a department's counters.
	Counters(ctx context.Context, departmentID string) ([]domain.Counter, error)
	// DeleteDemoData removes the seeded demo departments (delete permission).
	DeleteDemoData(ctx context.Context, id services.Identity) error
}

// QueueAPI is the queue registry and pause control surface.
type QueueAPI interface {
	// Today resolves (or lazily creates) the department's queue for today.
	Today(ctx context.Context, departmentID string) (*domain.Queue, error)
	// Pause blocks call-next on a queue (update permission).
	Pause(ctx context.Context, id services.Identity, queueID string) error
	// Resume lifts a pause (update permission).
	Resume(ctx context.Context, id services.Identity, queueID string) error
	// Snapshot returns a display view with per-status counts.
	Snapshot(ctx context.Context, queueID string) (*services.QueueSnapshot, error)
}

// TokenAPI is the token issuance and serving surface.
type TokenAPI interface {
	// Issue allocates the next token for a department's queue of today.
	Issue(ctx context.Context, in services.IssueTokenInput) (*domain.Token, error)
	// CallNext advances the serving state of one counter (update permission).
	CallNext(ctx context.Context, id services.Identity, queueID, counterID string) (*domain.Token, error)
	// Get returns a single token.
	Get(ctx context.Context, tokenID string) (*domain.Token, error)
	// ListPage returns a page of a queue's tokens in issuance order.
	ListPage(ctx context.Context, queueID string, page, pageSize int) ([]domain.Token, int64, error)
}

// Handlers aggregates the HTTP endpoints and their dependencies.
type Handlers struct {
	deptSvc  DepartmentAPI
	queueSvc QueueAPI
	tokenSvc TokenAPI

	// db and idemTTL back the idempotent-replay lookup of the public
	// token-creation endpoint.
	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs the Handlers aggregate.
func New(dept DepartmentAPI, queue QueueAPI, token TokenAPI, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{
		deptSvc:  dept,
		queueSvc: queue,
		tokenSvc: token,
		db:       db,
		idemTTL:  idemTTL,
	}
}
