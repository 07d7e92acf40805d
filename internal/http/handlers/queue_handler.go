// Queue HTTP handlers.
//
// This file exposes the REST endpoints for day-queues:
//   - GET  /departments/{id}/queue/today  (resolve or create today's queue)
//   - GET  /queues/{id}                   (display snapshot)
//   - GET  /queues/{id}/tokens            (paginated token list)
//   - POST /queues/{id}/pause             (staff: block call-next)
//   - POST /queues/{id}/resume            (staff: lift pause)
//
// The snapshot and listing endpoints are public reads for display boards and
// are eventually consistent by design.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediqueue/go-queue-backend/internal/http/middleware"
	"github.com/mediqueue/go-queue-backend/internal/utils"
)

// TodayQueue godoc
// @ID          todayQueue
// @Summary     Resolve today's queue for a department
// @Description Returns the department's queue for the current day, creating it lazily on first use.
// @Tags        Queues
// @Produce     json
// @Param       id  path  string  true  "Department ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Queue
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Failure     409  {object} handlers.ErrorResponse "Department inactive"
// @Router      /departments/{id}/queue/today [get]
func (h *Handlers) TodayQueue(c *gin.Context) {
	q, err := h.queueSvc.Today(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// QueueSnapshot godoc
// @ID          queueSnapshot
// @Summary     Display snapshot of a queue
// @Description Best-effort counts and wait estimate for waiting-room boards.
// @Tags        Queues
// @Produce     json
// @Param       id  path  string  true  "Queue ID (UUID)"  format(uuid)
// @Success     200  {object} services.QueueSnapshot
// @Failure     404  {object} handlers.ErrorResponse "Queue not found"
// @Router      /queues/{id} [get]
func (h *Handlers) QueueSnapshot(c *gin.Context) {
	snap, err := h.queueSvc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, snap)
}

// ListQueueTokens godoc
// @ID          listQueueTokens
// @Summary     List a queue's tokens
// @Description Paginated tokens in issuance order.
// @Tags        Queues
// @Produce     json
// @Param       id        path   string true  "Queue ID (UUID)"  format(uuid)
// @Param       page      query  int    false "Page (1-based)"   default(1)
// @Param       page_size query  int    false "Page size"        default(20)
// @Success     200  {object} handlers.PageResponse
// @Failure     404  {object} handlers.ErrorResponse "Queue not found"
// @Router      /queues/{id}/tokens [get]
func (h *Handlers) ListQueueTokens(c *gin.Context) {
	page, pageSize := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 20),
		100,
	)

	items, total, err := h.tokenSvc.ListPage(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, PageResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// PauseQueue godoc
// @ID          pauseQueue
// @Summary     Pause a queue
// @Description Blocks call-next until resumed. Token creation continues.
// @Tags        Queues
// @Produce     json
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(operator)
// @Param       id           path    string  true  "Queue ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     404  {object} handlers.ErrorResponse "Queue not found"
// @Router      /queues/{id}/pause [post]
func (h *Handlers) PauseQueue(c *gin.Context) {
	if err := h.queueSvc.Pause(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// ResumeQueue godoc
// @ID          resumeQueue
// @Summary     Resume a paused queue
// @Tags        Queues
// @Produce     json
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(operator)
// @Param       id           path    string  true  "Queue ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     404  {object} handlers.ErrorResponse "Queue not found"
// @Router      /queues/{id}/resume [post]
func (h *Handlers) ResumeQueue(c *gin.Context) {
	if err := h.queueSvc.Resume(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
