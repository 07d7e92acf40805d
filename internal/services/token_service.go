// Package services – TokenService
//
// This file implements TokenService, the application-level component that owns
// token issuance (the sequencer) and the serving state machine. Issuance
// allocates monotonically increasing, collision-free sequence numbers per
// department and day; call-next closes out a counter's current token and
// claims the next eligible waiting token. Both run as atomic units of work:
// one GORM transaction, re-run in full on lost races, never partially applied.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// queue/counter/department identifiers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tokenPadWidth is the zero-pad width of the sequence part of a token number
// ("007").
const tokenPadWidth = 3

// FormatTokenNumber renders the human-facing token number from the department
// code, the counter display code, and the sequence. The counter-qualified
// scheme is canonical: it stays unambiguous when a department runs several
// counters.
func FormatTokenNumber(departmentCode, counterCode string, sequence int) string {
	return fmt.Sprintf("%s-%s-%0*d", departmentCode, counterCode, tokenPadWidth, sequence)
}

// IssueTokenInput carries a patient's token request. The fields are assumed
// content-sanitized by the upstream boundary; the service still enforces the
// structural invariants it owns (active department, non-empty name).
type IssueTokenInput struct {
	DepartmentID string
	PatientName  string
	PatientPhone string
	PatientAge   *int
	VisitReason  string
	IsPriority   bool
}

// TokenService coordinates token issuance and serving-state transitions.
type TokenService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxAttempts bounds internal re-runs of an atomic unit after lost
	// races. Zero means the package default.
	MaxAttempts int

	// Now returns the current time; overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// NewTokenService constructs a TokenService with default retry bounds.
func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{DB: db, MaxAttempts: defaultMaxAttempts}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue allocates the next token for the department's queue of the current
// day, creating the queue on the first request of the day.
//
// The whole read-modify-write cycle runs in one transaction: ensure the queue
// row exists, claim the next sequence with a single atomic increment, pick the
// department's first active counter for the number format, and insert the
// token as WAITING. Two concurrent issuances can therefore never observe the
// same high-water mark or produce the same sequence; if the store reports a
// lost race anyway, the transaction is rolled back and re-run from the top.
func (s *TokenService) Issue(ctx context.Context, in IssueTokenInput) (*domain.Token, error) {
	tr := otel.Tracer("services/TokenService")
	ctx, span := tr.Start(ctx, "Issue",
		trace.WithAttributes(
			attribute.String("department.id", in.DepartmentID),
			attribute.Bool("token.priority", in.IsPriority),
		),
	)
	defer span.End()

	in.PatientName = strings.TrimSpace(in.PatientName)
	if in.PatientName == "" {
		return nil, ErrEmptyPatientName
	}

	var issued *domain.Token
	var deptCode string
	err := withRetry(ctx, "issue_token", s.MaxAttempts, func() error {
		issued = nil
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dept, err := repo.GetDepartment(ctx, tx, in.DepartmentID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrDepartmentNotFound
			}
			if err != nil {
				return err
			}
			if !dept.IsActive {
				return ErrInactiveDepartment
			}
			deptCode = dept.Code

			day := repo.StartOfDay(s.now())
			queue, err := repo.EnsureQueue(ctx, tx, dept.ID, day)
			if err != nil {
				return err
			}

			seq, err := repo.ClaimNextSequence(ctx, tx, queue.ID)
			if err != nil {
				return err
			}

			counter, err := repo.FirstActiveCounter(ctx, tx, dept.ID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNoActiveCounter
			}
			if err != nil {
				return err
			}

			tok, err := repo.CreateToken(ctx, tx, repo.CreateTokenInput{
				QueueID:      queue.ID,
				TokenNumber:  FormatTokenNumber(dept.Code, counter.CounterCode, seq),
				Sequence:     seq,
				PatientName:  in.PatientName,
				PatientPhone: in.PatientPhone,
				PatientAge:   in.PatientAge,
				VisitReason:  in.VisitReason,
				IsPriority:   in.IsPriority,
			})
			if err != nil {
				return err
			}
			issued = tok
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	tokensIssued.WithLabelValues(deptCode, fmt.Sprintf("%t", in.IsPriority)).Inc()
	return issued, nil
}

// CallNext advances the serving state of one counter: the token it is
// currently serving (if any) becomes SERVED, and the next eligible WAITING
// token — priority first, then FIFO by sequence — becomes SERVING at that
// counter. It returns (nil, nil) when the queue is drained, leaving the
// counter idle.
//
// The selection and both transitions run in one transaction. Each status write
// re-checks the expected current status, so a token claimed by a concurrent
// call on another counter aborts this unit, which is then re-run with a fresh
// selection. A paused queue fails with ErrQueuePaused before any mutation.
func (s *TokenService) CallNext(ctx context.Context, id Identity, queueID, counterID string) (*domain.Token, error) {
	tr := otel.Tracer("services/TokenService")
	ctx, span := tr.Start(ctx, "CallNext",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.String("counter.id", counterID),
			attribute.String("user.id", id.UserID),
		),
	)
	defer span.End()

	if err := requirePermission(id, PermUpdate); err != nil {
		return nil, err
	}

	var called *domain.Token
	var deptCode string
	err := withRetry(ctx, "call_next", s.MaxAttempts, func() error {
		called = nil
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			queue, err := repo.GetQueue(ctx, tx, queueID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrQueueNotFound
			}
			if err != nil {
				return err
			}
			if queue.IsPaused {
				return ErrQueuePaused
			}

			counter, err := repo.GetCounter(ctx, tx, counterID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCounterNotFound
			}
			if err != nil {
				return err
			}
			if counter.DepartmentID != queue.DepartmentID {
				return ErrCounterMismatch
			}

			dept, err := repo.GetDepartment(ctx, tx, queue.DepartmentID)
			if err != nil {
				return err
			}
			deptCode = dept.Code

			now := s.now()

			// Close out whatever this counter is serving.
			current, err := repo.ServingTokenAtCounter(ctx, tx, queue.ID, counter.ID)
			if err != nil {
				return err
			}
			if current != nil {
				if !domain.ValidTransition(current.Status, domain.StatusServed) {
					log.Error().
						Str("token_id", current.ID).
						Str("status", current.Status).
						Msg("illegal status transition to SERVED")
					return ErrInvariant
				}
				if err := repo.MarkServed(ctx, tx, current.ID, now); err != nil {
					if errors.Is(err, repo.ErrNotFound) {
						return ErrConflict
					}
					return err
				}
				tokensServed.WithLabelValues(deptCode).Inc()
			}

			// Claim the next eligible waiting token, if any.
			next, err := repo.NextWaitingToken(ctx, tx, queue.ID)
			if err != nil {
				return err
			}
			if next == nil {
				return nil
			}
			if !domain.ValidTransition(next.Status, domain.StatusServing) {
				log.Error().
					Str("token_id", next.ID).
					Str("status", next.Status).
					Msg("illegal status transition to SERVING")
				return ErrInvariant
			}
			if err := repo.MarkServing(ctx, tx, next.ID, counter.ID, now); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrConflict
				}
				return err
			}

			claimed, err := repo.GetToken(ctx, tx, next.ID)
			if err != nil {
				return err
			}
			called = claimed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return called, nil
}

// Get returns a single token by ID.
func (s *TokenService) Get(ctx context.Context, tokenID string) (*domain.Token, error) {
	t, err := repo.GetToken(ctx, s.DB, tokenID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	return t, err
}

// ListPage returns paginated tokens of a queue in issuance order.
// It applies defaults for invalid page/pageSize and returns total count.
func (s *TokenService) ListPage(ctx context.Context, queueID string, page, pageSize int) ([]domain.Token, int64, error) {
	tr := otel.Tracer("services/TokenService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrQueueNotFound
		}
		return nil, 0, err
	}

	total, err := repo.CountTokens(ctx, s.DB, queueID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Token{}, 0, nil
	}

	items, err := repo.ListTokensPage(ctx, s.DB, queueID, offset, pageSize)
	return items, total, err
}
