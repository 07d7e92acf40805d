package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mediqueue/go-queue-backend/internal/repo"
)

var admin = Identity{UserID: "admin-1", Role: RoleAdmin}

func TestDepartmentCreate_NormalizesCode(t *testing.T) {
	db := newSvcDB(t)
	s := NewDepartmentService(db)

	d, err := s.Create(context.Background(), admin, "  Outpatient  ", "  opd ", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Code != "OPD" {
		t.Fatalf("code = %q, want OPD", d.Code)
	}
	if d.Name != "Outpatient" {
		t.Fatalf("name = %q, want trimmed", d.Name)
	}
	if d.AvgServiceTimeMinutes != s.DefaultAvgServiceMinutes {
		t.Fatalf("avg = %d, want default %d", d.AvgServiceTimeMinutes, s.DefaultAvgServiceMinutes)
	}
}

func TestDepartmentCreate_Validation(t *testing.T) {
	db := newSvcDB(t)
	s := NewDepartmentService(db)

	cases := []struct{ name, code string }{
		{"", "OPD"},            // empty name
		{"X", ""},              // empty code
		{"X", "TOO-LONG-CODE"}, // dash not allowed
		{"X", "WAYTOOLONGCODE"},
	}
	for _, c := range cases {
		if _, err := s.Create(context.Background(), admin, c.name, c.code, 15); !errors.Is(err, ErrInvalidDepartmentCode) {
			t.Errorf("Create(%q, %q) = %v, want ErrInvalidDepartmentCode", c.name, c.code, err)
		}
	}
}

func TestDepartmentCreate_PermissionAndDuplicate(t *testing.T) {
	db := newSvcDB(t)
	s := NewDepartmentService(db)

	if _, err := s.Create(context.Background(), operator, "X", "OPD", 15); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("operator must not create departments, got %v", err)
	}

	if _, err := s.Create(context.Background(), admin, "One", "OPD", 15); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(context.Background(), admin, "Two", "opd", 15); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken (codes are case-folded), got %v", err)
	}
}

func TestDepartmentSetActive_Gate(t *testing.T) {
	db := newSvcDB(t)
	d, _ := seedDeptCounter(t, db, "OPD", "A")
	s := NewDepartmentService(db)

	// Deactivation is an admin action; the operator's update permission is not enough.
	if err := s.SetActive(context.Background(), operator, d.ID, false); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("operator must not deactivate, got %v", err)
	}
	if err := s.SetActive(context.Background(), admin, d.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, err := s.Get(context.Background(), d.ID)
	if err != nil || got.IsActive {
		t.Fatalf("department should be inactive: %+v, %v", got, err)
	}

	if err := s.SetActive(context.Background(), admin, "missing", true); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestAddCounter(t *testing.T) {
	db := newSvcDB(t)
	d, _ := seedDeptCounter(t, db, "OPD", "A") // counter 1 exists
	s := NewDepartmentService(db)

	c, err := s.AddCounter(context.Background(), admin, d.ID, 2, "b")
	if err != nil {
		t.Fatalf("AddCounter: %v", err)
	}
	if c.CounterCode != "B" || c.CounterNumber != 2 {
		t.Fatalf("unexpected counter: %+v", c)
	}

	if _, err := s.AddCounter(context.Background(), admin, d.ID, 1, "Z"); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken for duplicate number, got %v", err)
	}
	if _, err := s.AddCounter(context.Background(), admin, d.ID, 0, "C"); !errors.Is(err, ErrInvalidDepartmentCode) {
		t.Fatalf("expected validation error for number 0, got %v", err)
	}
	if _, err := s.AddCounter(context.Background(), admin, "missing", 1, "A"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
	if _, err := s.AddCounter(context.Background(), operator, d.ID, 3, "C"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("operator must not add counters, got %v", err)
	}
}

func TestCounters_ListsForDepartment(t *testing.T) {
	db := newSvcDB(t)
	d, _ := seedDeptCounter(t, db, "OPD", "A")
	s := NewDepartmentService(db)

	list, err := s.Counters(context.Background(), d.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("Counters = %#v, %v", list, err)
	}
	if _, err := s.Counters(context.Background(), "missing"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestDeleteDemoData_Gate(t *testing.T) {
	db := newSvcDB(t)
	if err := repo.SeedDemo(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewDepartmentService(db)

	if err := s.DeleteDemoData(context.Background(), operator); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("operator must not delete demo data, got %v", err)
	}
	if err := s.DeleteDemoData(context.Background(), admin); err != nil {
		t.Fatalf("DeleteDemoData: %v", err)
	}
	if _, err := repo.GetDepartmentByCode(context.Background(), db, "OPD"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("demo data should be gone, got %v", err)
	}
}
