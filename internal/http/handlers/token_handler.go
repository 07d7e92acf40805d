// Token HTTP handlers.
//
// This file exposes the REST endpoints for tokens:
//   - POST /tokens                                        (public kiosk: issue a token)
//   - GET  /tokens/{id}                                   (fetch one token)
//   - POST /queues/{id}/counters/{counterID}/call-next    (staff: advance a counter)
//
// Token creation is deliberately unauthenticated — patients use shared kiosks
// in the waiting area — and supports an optional Idempotency-Key so a kiosk
// retrying over a flaky network never issues duplicate tokens.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediqueue/go-queue-backend/internal/http/middleware"
	"github.com/mediqueue/go-queue-backend/internal/repo"
	"github.com/mediqueue/go-queue-backend/internal/services"
)

// CreateTokenRequest is the JSON payload for requesting a token. Content
// sanitization happens at the upstream boundary; binding enforces structure.
type CreateTokenRequest struct {
	DepartmentID string `json:"department_id" binding:"required,uuid" example:"b3e6…"`
	PatientName  string `json:"patient_name"  binding:"required" example:"Jane Doe"`
	PatientPhone string `json:"patient_phone" binding:"required" example:"+302101234567"`
	PatientAge   *int   `json:"patient_age,omitempty"  binding:"omitempty,min=0,max=150" example:"42"`
	VisitReason  string `json:"visit_reason,omitempty" example:"follow-up"`
	IsPriority   bool   `json:"is_priority" example:"false"`
}

// CreateToken godoc
// @ID          createToken
// @Summary     Issue a queue token
// @Description Allocates the next token for the department's queue of today. Supply an Idempotency-Key to make retries safe.
// @Tags        Tokens
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Stable key for safe retries"
// @Param       body             body    handlers.CreateTokenRequest true "Token request"
//
// @Success     201  {object} domain.Token
// @Success     200  {object} domain.Token "Replay of a previously issued token"
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Failure     409  {object} handlers.ErrorResponse "Department inactive or conflict"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /tokens [post]
func (h *Handlers) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "department_id, patient_name and patient_phone are required")
		return
	}
	ctx := c.Request.Context()

	// Replay a previously issued token when the same key arrives again.
	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey {
		if rec, err := repo.GetIdempotency(ctx, h.db, req.DepartmentID, key, time.Now().UTC()); err == nil {
			if tok, terr := h.tokenSvc.Get(ctx, rec.TokenID); terr == nil {
				ok(c, rec.Status, tok)
				return
			}
		}
	}

	tok, err := h.tokenSvc.Issue(ctx, services.IssueTokenInput{
		DepartmentID: req.DepartmentID,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		PatientAge:   req.PatientAge,
		VisitReason:  req.VisitReason,
		IsPriority:   req.IsPriority,
	})
	if err != nil {
		failService(c, err)
		return
	}

	if hasKey {
		_, ierr := repo.CreateIdempotency(ctx, h.db, req.DepartmentID, key, tok.ID, http.StatusCreated, h.idemTTL)
		if ierr != nil && !errors.Is(ierr, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(ierr).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusCreated, tok)
}

// GetToken godoc
// @ID          getToken
// @Summary     Fetch one token
// @Tags        Tokens
// @Produce     json
// @Param       id  path  string  true  "Token ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Token
// @Failure     404  {object} handlers.ErrorResponse "Token not found"
// @Router      /tokens/{id} [get]
func (h *Handlers) GetToken(c *gin.Context) {
	tok, err := h.tokenSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, tok)
}

// CallNext godoc
// @ID          callNext
// @Summary     Call the next token at a counter
// @Description Marks the counter's current token SERVED and claims the next waiting token (priority first, then FIFO). Returns 204 when the queue is drained.
// @Tags        Tokens
// @Produce     json
//
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(operator)
// @Param       id           path    string  true  "Queue ID (UUID)"    format(uuid)
// @Param       counterID    path    string  true  "Counter ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Token
// @Success     204  {string} string "Queue drained; counter idle"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     404  {object} handlers.ErrorResponse "Queue or counter not found"
// @Failure     409  {object} handlers.ErrorResponse "Queue paused or conflict"
// @Router      /queues/{id}/counters/{counterID}/call-next [post]
func (h *Handlers) CallNext(c *gin.Context) {
	tok, err := h.tokenSvc.CallNext(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), c.Param("counterID"))
	if err != nil {
		failService(c, err)
		return
	}
	if tok == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, tok)
}
