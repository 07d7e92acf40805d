// Department HTTP handlers.
//
// This file exposes the administrative REST endpoints for departments and
// their counters:
//   - POST   /departments                  (create department)
//   - GET    /departments                  (list departments)
//   - GET    /departments/{id}             (fetch one department)
//   - PATCH  /departments/{id}/active      (activate / deactivate)
//   - POST   /departments/{id}/counters    (create counter)
//   - GET    /departments/{id}/counters    (list counters)
//   - DELETE /admin/demo                   (remove seeded demo data)
//
// All mutations are gated by the caller's role, resolved upstream and carried
// in the X-User-ID / X-User-Role headers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediqueue/go-queue-backend/internal/http/middleware"
)

// CreateDepartmentRequest is the JSON payload for registering a department.
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required" example:"Outpatient Department"`
	// Code becomes the token prefix; it is uppercased server-side.
	Code string `json:"code" binding:"required" example:"OPD"`
	// AvgServiceTimeMinutes defaults to 15 when omitted.
	AvgServiceTimeMinutes int `json:"avg_service_time_minutes" example:"15"`
}

// CreateDepartment godoc
// @ID          createDepartment
// @Summary     Create a department
// @Description Registers a new department. The code is uppercased and becomes the token prefix.
// @Tags        Departments
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID    header  string  true  "Staff user ID"   example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"      example(admin)
// @Param       body         body    handlers.CreateDepartmentRequest true "Department payload"
//
// @Success     201  {object} domain.Department
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     409  {object} handlers.ErrorResponse "Code already in use"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /departments [post]
func (h *Handlers) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and code are required")
		return
	}

	d, err := h.deptSvc.Create(c.Request.Context(), middleware.IdentityFrom(c), req.Name, req.Code, req.AvgServiceTimeMinutes)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, d)
}

// ListDepartments godoc
// @ID          listDepartments
// @Summary     List departments
// @Tags        Departments
// @Produce     json
// @Success     200  {array}  domain.Department
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /departments [get]
func (h *Handlers) ListDepartments(c *gin.Context) {
	out, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetDepartment godoc
// @ID          getDepartment
// @Summary     Fetch one department
// @Tags        Departments
// @Produce     json
// @Param       id  path  string  true  "Department ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Department
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Router      /departments/{id} [get]
func (h *Handlers) GetDepartment(c *gin.Context) {
	d, err := h.deptSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// SetDepartmentActiveRequest toggles a department's active flag.
type SetDepartmentActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// SetDepartmentActive godoc
// @ID          setDepartmentActive
// @Summary     Activate or deactivate a department
// @Description Deactivation blocks new token issuance but keeps all history.
// @Tags        Departments
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(admin)
// @Param       id           path    string  true  "Department ID (UUID)"  format(uuid)
// @Param       body         body    handlers.SetDepartmentActiveRequest true "Active flag"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Router      /departments/{id}/active [patch]
func (h *Handlers) SetDepartmentActive(c *gin.Context) {
	var req SetDepartmentActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "active flag is required")
		return
	}

	if err := h.deptSvc.SetActive(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), *req.Active); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// CreateCounterRequest is the JSON payload for adding a counter.
type CreateCounterRequest struct {
	CounterNumber int    `json:"counter_number" binding:"required,min=1" example:"1"`
	CounterCode   string `json:"counter_code"   binding:"required" example:"A"`
}

// CreateCounter godoc
// @ID          createCounter
// @Summary     Add a service counter to a department
// @Tags        Departments
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(admin)
// @Param       id           path    string  true  "Department ID (UUID)"  format(uuid)
// @Param       body         body    handlers.CreateCounterRequest true "Counter payload"
// @Success     201  {object} domain.Counter
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Failure     409  {object} handlers.ErrorResponse "Counter number already in use"
// @Router      /departments/{id}/counters [post]
func (h *Handlers) CreateCounter(c *gin.Context) {
	var req CreateCounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "counter_number and counter_code are required")
		return
	}

	counter, err := h.deptSvc.AddCounter(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req.CounterNumber, req.CounterCode)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, counter)
}

// ListCounters godoc
// @ID          listCounters
// @Summary     List a department's counters
// @Tags        Departments
// @Produce     json
// @Param       id  path  string  true  "Department ID (UUID)"  format(uuid)
// @Success     200  {array}  domain.Counter
// @Failure     404  {object} handlers.ErrorResponse "Department not found"
// @Router      /departments/{id}/counters [get]
func (h *Handlers) ListCounters(c *gin.Context) {
	out, err := h.deptSvc.Counters(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteDemo godoc
// @ID          deleteDemo
// @Summary     Remove seeded demo data
// @Tags        Admin
// @Produce     json
// @Param       X-User-ID    header  string  true  "Staff user ID"  example(staff-1)
// @Param       X-User-Role  header  string  true  "Staff role"     example(admin)
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Insufficient permission"
// @Router      /admin/demo [delete]
func (h *Handlers) DeleteDemo(c *gin.Context) {
	if err := h.deptSvc.DeleteDemoData(c.Request.Context(), middleware.IdentityFrom(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
