package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateIdempotency_RoundTrip(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, "dept-1", "key-1", "tok-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.TokenID != "tok-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(context.Background(), db, "dept-1", "key-1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("wrong record: %+v", got)
	}
}

func TestGetIdempotency_MissesAndExpiry(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()

	if _, err := GetIdempotency(context.Background(), db, "dept-1", "nope", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown key, got %v", err)
	}
	if _, err := GetIdempotency(context.Background(), db, "", "key", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty department, got %v", err)
	}

	if _, err := CreateIdempotency(context.Background(), db, "dept-1", "key-1", "tok-1", 201, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Replay beyond the TTL does not resolve.
	if _, err := GetIdempotency(context.Background(), db, "dept-1", "key-1", now.Add(2*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestCreateIdempotency_DuplicateKeyScopedByDepartment(t *testing.T) {
	db := newRepoDB(t)

	if _, err := CreateIdempotency(context.Background(), db, "dept-1", "key-1", "tok-1", 201, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateIdempotency(context.Background(), db, "dept-1", "key-1", "tok-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same (department, key), got %v", err)
	}
	// Same key under another department is a distinct record.
	if _, err := CreateIdempotency(context.Background(), db, "dept-2", "key-1", "tok-3", 201, time.Hour); err != nil {
		t.Fatalf("cross-department key must be allowed: %v", err)
	}
}
