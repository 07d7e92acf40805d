// Package services – DepartmentService
//
// This file implements the administrative surface for departments and their
// counters: creation, listing, activation state, and demo-data teardown.
// Mutations are gated on the RBAC table; department codes are normalized to
// uppercase so that token prefixes stay consistent regardless of how an
// administrator typed them.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// codeRE constrains department codes to short alphanumeric prefixes.
var codeRE = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// upperCaser folds department codes to uppercase, locale-independent.
var upperCaser = cases.Upper(language.Und)

// DepartmentService provides administrative operations on departments and
// counters.
type DepartmentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// DefaultAvgServiceMinutes is applied when a department is created
	// without an explicit average service time.
	DefaultAvgServiceMinutes int
}

// NewDepartmentService constructs a DepartmentService with sane defaults.
func NewDepartmentService(db *gorm.DB) *DepartmentService {
	return &DepartmentService{
		DB:                       db,
		DefaultAvgServiceMinutes: 15,
	}
}

// Create registers a new department. The code is trimmed and uppercased
// before validation; a duplicate code returns ErrCodeTaken. Requires the
// create permission.
func (s *DepartmentService) Create(ctx context.Context, id Identity, name, code string, avgServiceMinutes int) (*domain.Department, error) {
	tr := otel.Tracer("services/DepartmentService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("department.code", code),
			attribute.String("user.id", id.UserID),
		),
	)
	defer span.End()

	if err := requirePermission(id, PermCreate); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	code = upperCaser.String(strings.TrimSpace(code))
	if name == "" || !codeRE.MatchString(code) {
		return nil, ErrInvalidDepartmentCode
	}
	if avgServiceMinutes <= 0 {
		avgServiceMinutes = s.DefaultAvgServiceMinutes
	}

	d, err := repo.CreateDepartment(ctx, s.DB, name, code, avgServiceMinutes)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrCodeTaken
	}
	return d, err
}

// List returns all departments ordered by code. Read-only, no gate.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return repo.ListDepartments(ctx, s.DB)
}

// Get returns a single department by ID.
func (s *DepartmentService) Get(ctx context.Context, departmentID string) (*domain.Department, error) {
	d, err := repo.GetDepartment(ctx, s.DB, departmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrDepartmentNotFound
	}
	return d, err
}

// SetActive activates or deactivates a department. Deactivation blocks new
// token issuance but keeps all history. Requires the delete permission, which
// restricts it to administrators.
func (s *DepartmentService) SetActive(ctx context.Context, id Identity, departmentID string, active bool) error {
	tr := otel.Tracer("services/DepartmentService")
	ctx, span := tr.Start(ctx, "SetActive",
		trace.WithAttributes(
			attribute.String("department.id", departmentID),
			attribute.Bool("active", active),
			attribute.String("user.id", id.UserID),
		),
	)
	defer span.End()

	if err := requirePermission(id, PermDelete); err != nil {
		return err
	}
	err := repo.SetDepartmentActive(ctx, s.DB, departmentID, active)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrDepartmentNotFound
	}
	return err
}

// AddCounter creates a service counter under a department. The counter number
// must be unique within the department (ErrCodeTaken otherwise). Requires the
// create permission.
func (s *DepartmentService) AddCounter(ctx context.Context, id Identity, departmentID string, number int, code string) (*domain.Counter, error) {
	tr := otel.Tracer("services/DepartmentService")
	ctx, span := tr.Start(ctx, "AddCounter",
		trace.WithAttributes(
			attribute.String("department.id", departmentID),
			attribute.Int("counter.number", number),
			attribute.String("user.id", id.UserID),
		),
	)
	defer span.End()

	if err := requirePermission(id, PermCreate); err != nil {
		return nil, err
	}

	code = upperCaser.String(strings.TrimSpace(code))
	if code == "" || number < 1 {
		return nil, ErrInvalidDepartmentCode
	}

	if _, err := repo.GetDepartment(ctx, s.DB, departmentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	c, err := repo.CreateCounter(ctx, s.DB, departmentID, number, code)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrCodeTaken
	}
	return c, err
}

// Counters lists a department's counters ordered by number.
func (s *DepartmentService) Counters(ctx context.Context, departmentID string) ([]domain.Counter, error) {
	if _, err := repo.GetDepartment(ctx, s.DB, departmentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return repo.ListCounters(ctx, s.DB, departmentID)
}

// DeleteDemoData removes the seeded demo departments and everything hanging
// off them. Requires the delete permission.
func (s *DepartmentService) DeleteDemoData(ctx context.Context, id Identity) error {
	tr := otel.Tracer("services/DepartmentService")
	ctx, span := tr.Start(ctx, "DeleteDemoData",
		trace.WithAttributes(attribute.String("user.id", id.UserID)),
	)
	defer span.End()

	if err := requirePermission(id, PermDelete); err != nil {
		return err
	}
	return repo.DeleteDemoData(ctx, s.DB)
}
