package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mediqueue/go-queue-backend/internal/domain"
)

// seedQueue creates a department with one counter and today's queue.
func seedQueue(t *testing.T, db *gorm.DB) (*domain.Queue, *domain.Counter) {
	t.Helper()
	d, c := seedDept(t, db, "OPD", "A")
	q, err := EnsureQueue(context.Background(), db, d.ID, StartOfDay(time.Now()))
	if err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	return q, c
}

// mustToken inserts a WAITING token with the given sequence.
func mustToken(t *testing.T, db *gorm.DB, queueID string, seq int, priority bool) *domain.Token {
	t.Helper()
	tok, err := CreateToken(context.Background(), db, CreateTokenInput{
		QueueID:      queueID,
		TokenNumber:  "OPD-A-000",
		Sequence:     seq,
		PatientName:  "Jane Doe",
		PatientPhone: "+302101234567",
		IsPriority:   priority,
	})
	if err != nil {
		t.Fatalf("seed token %d: %v", seq, err)
	}
	return tok
}

func TestCreateToken_DefaultsToWaiting(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)

	tok := mustToken(t, db, q.ID, 1, false)
	if tok.Status != domain.StatusWaiting {
		t.Fatalf("status = %q, want WAITING", tok.Status)
	}
	if tok.CounterID != nil || tok.ServingAt != nil || tok.ServedAt != nil {
		t.Fatalf("fresh token must carry no serving state: %+v", tok)
	}
}

func TestCreateToken_DuplicateSequence(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)
	mustToken(t, db, q.ID, 1, false)

	_, err := CreateToken(context.Background(), db, CreateTokenInput{
		QueueID:      q.ID,
		TokenNumber:  "OPD-A-001",
		Sequence:     1,
		PatientName:  "Jo",
		PatientPhone: "+30210000000",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated sequence, got %v", err)
	}
}

func TestNextWaitingToken_PriorityBeforeFIFO(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)

	mustToken(t, db, q.ID, 1, false)
	prio := mustToken(t, db, q.ID, 2, true)
	mustToken(t, db, q.ID, 3, false)

	got, err := NextWaitingToken(context.Background(), db, q.ID)
	if err != nil {
		t.Fatalf("NextWaitingToken: %v", err)
	}
	if got == nil || got.ID != prio.ID {
		t.Fatalf("priority token must be picked first, got %+v", got)
	}
}

func TestNextWaitingToken_FIFOWithinSameClass(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)

	first := mustToken(t, db, q.ID, 1, false)
	mustToken(t, db, q.ID, 2, false)

	got, err := NextWaitingToken(context.Background(), db, q.ID)
	if err != nil {
		t.Fatalf("NextWaitingToken: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("lowest sequence must win, got %+v", got)
	}
}

func TestNextWaitingToken_DrainedQueue(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)

	got, err := NextWaitingToken(context.Background(), db, q.ID)
	if err != nil || got != nil {
		t.Fatalf("empty queue must yield (nil, nil), got %v %v", got, err)
	}
}

func TestMarkServing_ConditionalOnWaiting(t *testing.T) {
	db := newRepoDB(t)
	q, c := seedQueue(t, db)
	tok := mustToken(t, db, q.ID, 1, false)
	now := time.Now().UTC()

	if err := MarkServing(context.Background(), db, tok.ID, c.ID, now); err != nil {
		t.Fatalf("MarkServing: %v", err)
	}
	got, err := GetToken(context.Background(), db, tok.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.StatusServing || got.CounterID == nil || *got.CounterID != c.ID || got.ServingAt == nil {
		t.Fatalf("serving state not recorded: %+v", got)
	}

	// Second claim loses: the token is no longer WAITING.
	if err := MarkServing(context.Background(), db, tok.ID, c.ID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on lost race, got %v", err)
	}
}

func TestMarkServed_ConditionalOnServing(t *testing.T) {
	db := newRepoDB(t)
	q, c := seedQueue(t, db)
	tok := mustToken(t, db, q.ID, 1, false)
	now := time.Now().UTC()

	// Not yet serving.
	if err := MarkServed(context.Background(), db, tok.ID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("WAITING token must not be servable, got %v", err)
	}

	if err := MarkServing(context.Background(), db, tok.ID, c.ID, now); err != nil {
		t.Fatalf("MarkServing: %v", err)
	}
	if err := MarkServed(context.Background(), db, tok.ID, now); err != nil {
		t.Fatalf("MarkServed: %v", err)
	}

	got, _ := GetToken(context.Background(), db, tok.ID)
	if got.Status != domain.StatusServed || got.ServedAt == nil {
		t.Fatalf("served state not recorded: %+v", got)
	}

	// SERVED is terminal.
	if err := MarkServed(context.Background(), db, tok.ID, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("terminal token must not transition again, got %v", err)
	}
}

func TestServingTokenAtCounter(t *testing.T) {
	db := newRepoDB(t)
	q, c := seedQueue(t, db)

	got, err := ServingTokenAtCounter(context.Background(), db, q.ID, c.ID)
	if err != nil || got != nil {
		t.Fatalf("idle counter must yield (nil, nil), got %v %v", got, err)
	}

	tok := mustToken(t, db, q.ID, 1, false)
	if err := MarkServing(context.Background(), db, tok.ID, c.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkServing: %v", err)
	}

	got, err = ServingTokenAtCounter(context.Background(), db, q.ID, c.ID)
	if err != nil {
		t.Fatalf("ServingTokenAtCounter: %v", err)
	}
	if got == nil || got.ID != tok.ID {
		t.Fatalf("expected the serving token, got %+v", got)
	}
}

func TestListTokensPage_IssuanceOrderAndCount(t *testing.T) {
	db := newRepoDB(t)
	q, _ := seedQueue(t, db)
	for seq := 1; seq <= 5; seq++ {
		mustToken(t, db, q.ID, seq, seq == 4) // one priority in the middle
	}

	total, err := CountTokens(context.Background(), db, q.ID)
	if err != nil || total != 5 {
		t.Fatalf("CountTokens = %d, %v; want 5", total, err)
	}

	page, err := ListTokensPage(context.Background(), db, q.ID, 2, 2)
	if err != nil {
		t.Fatalf("ListTokensPage: %v", err)
	}
	// Listing ignores priority: pure issuance order.
	if len(page) != 2 || page[0].TokenSequence != 3 || page[1].TokenSequence != 4 {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestListTokensByStatus(t *testing.T) {
	db := newRepoDB(t)
	q, c := seedQueue(t, db)
	t1 := mustToken(t, db, q.ID, 1, false)
	mustToken(t, db, q.ID, 2, false)
	if err := MarkServing(context.Background(), db, t1.ID, c.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkServing: %v", err)
	}

	waiting, err := ListTokensByStatus(context.Background(), db, q.ID, domain.StatusWaiting)
	if err != nil || len(waiting) != 1 || waiting[0].TokenSequence != 2 {
		t.Fatalf("waiting = %#v, %v", waiting, err)
	}
	serving, err := ListTokensByStatus(context.Background(), db, q.ID, domain.StatusServing)
	if err != nil || len(serving) != 1 || serving[0].ID != t1.ID {
		t.Fatalf("serving = %#v, %v", serving, err)
	}
}
