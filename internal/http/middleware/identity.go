// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. Authentication itself happens
// upstream (gateway or session layer); by the time a request reaches this
// service the caller is described by two trusted headers, which this
// middleware copies into the Gin context for handlers, the access logger, and
// the rate limiter. Requests without the headers proceed anonymously — public
// endpoints (token kiosk, display boards) need no identity, and role-gated
// service methods reject anonymous callers on their own.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediqueue/go-queue-backend/internal/services"
)

const (
	// HeaderUserID carries the resolved staff user id.
	HeaderUserID = "X-User-ID"
	// HeaderUserRole carries the resolved staff role (admin|operator|viewer).
	HeaderUserRole = "X-User-Role"

	// userIDKey / userRoleKey are the Gin context keys for the identity.
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Identity copies the resolved caller identity from the trusted headers into
// the Gin context. Place it before Logger() so access logs carry the caller.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
			c.Set(userIDKey, uid)
		}
		if role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))); role != "" {
			c.Set(userRoleKey, role)
		}
		c.Next()
	}
}

// IdentityFrom returns the caller identity stored by Identity(). Anonymous
// requests yield a zero Identity, whose empty role permits nothing.
func IdentityFrom(c *gin.Context) services.Identity {
	var id services.Identity
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			id.UserID = s
		}
	}
	if v, ok := c.Get(userRoleKey); ok {
		if s, ok := v.(string); ok {
			id.Role = services.Role(s)
		}
	}
	return id
}
