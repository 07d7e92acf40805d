// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages: the waiting-room UI branches on queue_paused and
// department_inactive to render specific banners.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (bad_request, forbidden, conflict, …) mirror common HTTP
//     status semantics.
//   - Domain-specific codes cover conditions a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeQueuePaused        = "queue_paused"
	ErrCodeDepartmentInactive = "department_inactive"
	ErrCodeNoActiveCounter    = "no_active_counter"
	ErrCodePermissionDenied   = "permission_denied"
)
