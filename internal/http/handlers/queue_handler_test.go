package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mediqueue/go-queue-backend/internal/domain"
	"github.com/mediqueue/go-queue-backend/internal/services"
)

func TestTodayQueue(t *testing.T) {
	queue := &fakeQueueAPI{todayOut: &domain.Queue{ID: "q1", DepartmentID: "d1"}}
	r := newTestRouter(&fakeDeptAPI{}, queue, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodGet, "/departments/d1/queue/today", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if queue.todayID != "d1" {
		t.Fatalf("service got department %q", queue.todayID)
	}

	queue.todayOut, queue.todayErr = nil, services.ErrInactiveDepartment
	w = doJSON(t, r, http.MethodGet, "/departments/d1/queue/today", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestQueueSnapshot(t *testing.T) {
	queue := &fakeQueueAPI{snapOut: &services.QueueSnapshot{
		Queue:                &domain.Queue{ID: "q1"},
		DepartmentCode:       "OPD",
		Waiting:              4,
		EstimatedWaitMinutes: 60,
	}}
	r := newTestRouter(&fakeDeptAPI{}, queue, &fakeTokenAPI{}, nil)

	w := doJSON(t, r, http.MethodGet, "/queues/q1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got services.QueueSnapshot
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DepartmentCode != "OPD" || got.Waiting != 4 || got.EstimatedWaitMinutes != 60 {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestListQueueTokens_PaginationEnvelope(t *testing.T) {
	token := &fakeTokenAPI{
		pageItems: []domain.Token{{ID: "t1", TokenSequence: 1}, {ID: "t2", TokenSequence: 2}},
		pageTotal: 7,
	}
	r := newTestRouter(&fakeDeptAPI{}, &fakeQueueAPI{}, token, nil)

	w := doJSON(t, r, http.MethodGet, "/queues/q1/tokens?page=2&page_size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got PageResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 7 || got.Page != 2 || got.PageSize != 2 {
		t.Fatalf("envelope = %+v", got)
	}
	if token.pageGot != [2]int{2, 2} {
		t.Fatalf("service got %v", token.pageGot)
	}
}

func TestListQueueTokens_ClampsJunkParams(t *testing.T) {
	token := &fakeTokenAPI{}
	r := newTestRouter(&fakeDeptAPI{}, &fakeQueueAPI{}, token, nil)

	w := doJSON(t, r, http.MethodGet, "/queues/q1/tokens?page=junk&page_size=9999", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if token.pageGot[0] != 1 {
		t.Fatalf("junk page must fall back to 1, got %d", token.pageGot[0])
	}
	if token.pageGot[1] != 100 {
		t.Fatalf("oversized page_size must clamp to 100, got %d", token.pageGot[1])
	}
}

func TestPauseResume(t *testing.T) {
	queue := &fakeQueueAPI{}
	r := newTestRouter(&fakeDeptAPI{}, queue, &fakeTokenAPI{}, nil)

	hdr := map[string]string{"X-User-ID": "staff-1", "X-User-Role": "operator"}
	w := doJSON(t, r, http.MethodPost, "/queues/q1/pause", "", hdr)
	if w.Code != http.StatusNoContent || queue.pauseID != "q1" {
		t.Fatalf("pause: status = %d, id = %q", w.Code, queue.pauseID)
	}

	w = doJSON(t, r, http.MethodPost, "/queues/q1/resume", "", hdr)
	if w.Code != http.StatusNoContent || queue.resumeID != "q1" {
		t.Fatalf("resume: status = %d, id = %q", w.Code, queue.resumeID)
	}

	queue.pauseErr = services.ErrPermissionDenied
	w = doJSON(t, r, http.MethodPost, "/queues/q1/pause", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("anonymous pause: status = %d, want 403", w.Code)
	}

	queue.pauseErr = services.ErrQueueNotFound
	w = doJSON(t, r, http.MethodPost, "/queues/missing/pause", "", hdr)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing queue: status = %d, want 404", w.Code)
	}
}
