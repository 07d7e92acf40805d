package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/services"
)

func TestCreateDepartment(t *testing.T) {
	dept := &fakeDeptAPI{createOut: &domain.Department{ID: "d1", Name: "Outpatient", Code: "OPD"}}
	r := newTestRouter(dept, &fakeQueueAPI{}, &fakeTokenAPI{}, nil)

	body := `{"name": "Outpatient", "code": "opd", "avg_service_time_minutes": 20}`
	w := doJSON(t, r, http.MethodPost, "/departments", body, asAdmin())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if dept.createName != "Outpatient" || dept.createCode != "opd" || dept.createAvg != 20 {
		t.Fatalf("service input: %q %q %d", dept.createName, dept.createCode, dept.createAvg)
	}

	// Missing fields fail binding.
	w = doJSON(t, r, http.MethodPost, "/departments", `{"name": "x"}`, asAdmin())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Duplicate code surfaces as conflict.
	dept.createOut, dept.createErr = nil, services.ErrCodeTaken
	w = doJSON(t, r, http.MethodPost, "/departments", body, asAdmin())
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestListAndGetDepartment(t *testing.T) {
	dept := &fakeDeptAPI{
		listOut: []domain.Department{{ID: "d1", Code: "OPD"}, {ID: "d2", Code: "XRAY"}},
		getOut:  &domain.Department{ID: "d1", Code: "OPD"},
	}
	r := newTestRouter(dept, &fakeQueueAPI{}, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodGet, "/departments", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var list []domain.Department
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil || len(list) != 2 {
		t.Fatalf("list = %#v, %v", list, err)
	}

	w = doJSON(t, r, http.MethodGet, "/departments/d1", "", nil)
	if w.Code != http.StatusOK || dept.getID != "d1" {
		t.Fatalf("get: status = %d, id = %q", w.Code, dept.getID)
	}

	dept.getOut, dept.getErr = nil, services.ErrDepartmentNotFound
	w = doJSON(t, r, http.MethodGet, "/departments/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: status = %d", w.Code)
	}
}

func TestSetDepartmentActive(t *testing.T) {
	dept := &fakeDeptAPI{}
	r := newTestRouter(dept, &fakeQueueAPI{}, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodPatch, "/departments/d1/active", `{"active": false}`, asAdmin())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if dept.setActiveID != "d1" || dept.setActiveVal {
		t.Fatalf("service input: %q %v", dept.setActiveID, dept.setActiveVal)
	}

	// The flag is mandatory: a body without it must not silently deactivate.
	w = doJSON(t, r, http.MethodPatch, "/departments/d1/active", `{}`, asAdmin())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateAndListCounters(t *testing.T) {
	dept := &fakeDeptAPI{
		addCounterOut: &domain.Counter{ID: "c2", CounterNumber: 2, CounterCode: "B"},
		countersOut:   []domain.Counter{{ID: "c1", CounterNumber: 1}},
	}
	r := newTestRouter(dept, &fakeQueueAPI{}, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodPost, "/departments/d1/counters", `{"counter_number": 2, "counter_code": "B"}`, asAdmin())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if dept.addCounterDept != "d1" || dept.addCounterNum != 2 || dept.addCounterCode != "B" {
		t.Fatalf("service input: %q %d %q", dept.addCounterDept, dept.addCounterNum, dept.addCounterCode)
	}

	w = doJSON(t, r, http.MethodPost, "/departments/d1/counters", `{"counter_number": 0, "counter_code": "B"}`, asAdmin())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("number 0 must fail binding, status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/departments/d1/counters", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
}

func TestDeleteDemo(t *testing.T) {
	dept := &fakeDeptAPI{}
	r := newTestRouter(dept, &fakeQueueAPI{}, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodDelete, "/admin/demo", "", asAdmin())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}

	dept.deleteDemoErr = services.ErrPermissionDenied
	w = doJSON(t, r, http.MethodDelete, "/admin/demo", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
