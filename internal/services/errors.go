// Package services defines the business logic for departments, queues, and
// tokens. This file centralizes common service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Lookup errors.
var (
	// ErrDepartmentNotFound indicates that the referenced department does not exist.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrQueueNotFound indicates that the referenced queue does not exist.
	ErrQueueNotFound = errors.New("queue not found")

	// ErrCounterNotFound indicates that the referenced counter does not exist.
	ErrCounterNotFound = errors.New("counter not found")

	// ErrTokenNotFound indicates that the referenced token does not exist.
	ErrTokenNotFound = errors.New("token not found")
)

// Inactive-resource errors. Both require caller or administrative action to
// clear; retrying without intervention cannot succeed.
var (
	// ErrInactiveDepartment is returned when token issuance targets a
	// department that has been deactivated.
	ErrInactiveDepartment = errors.New("department is inactive")

	// ErrQueuePaused is returned when call-next runs against a paused queue.
	// Token creation is never blocked by a pause.
	ErrQueuePaused = errors.New("queue is currently paused")
)

// Validation and configuration errors.
var (
	// ErrEmptyPatientName is returned when a token request carries no patient name.
	ErrEmptyPatientName = errors.New("patient name is empty")

	// ErrInvalidDepartmentCode is returned when a department code is empty or
	// contains characters other than letters and digits.
	ErrInvalidDepartmentCode = errors.New("department code must be 1-12 letters or digits")

	// ErrNoActiveCounter is returned when a department has no active counter
	// to qualify token numbers with.
	ErrNoActiveCounter = errors.New("department has no active counter")

	// ErrCounterMismatch is returned when the counter does not belong to the
	// queue's department.
	ErrCounterMismatch = errors.New("counter belongs to a different department")

	// ErrCodeTaken is returned when a department code or counter number is
	// already in use.
	ErrCodeTaken = errors.New("code already in use")
)

// Access and concurrency errors.
var (
	// ErrPermissionDenied is returned when the caller's role does not permit
	// the attempted action.
	ErrPermissionDenied = errors.New("insufficient permission")

	// ErrConflict is returned when an atomic unit of work repeatedly lost
	// races against concurrent callers and its internal retries are
	// exhausted. The operation left no partial state and may be retried by
	// the caller.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInvariant indicates a broken internal invariant (e.g. an illegal
	// status transition read back from the store). It is never expected in
	// correct operation and is always logged before being returned.
	ErrInvariant = errors.New("internal invariant violated")
)
