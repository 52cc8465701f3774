package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user's ID, or "" when the request
// carries no identity.
func currentUserID(c *gin.Context) string {
	id, _ := c.Get(middleware.CtxUserIDKey)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

// currentUserEmail returns the authenticated user's email, or "".
func currentUserEmail(c *gin.Context) string {
	email, _ := c.Get(middleware.CtxUserEmailKey)
	if s, ok := email.(string); ok {
		return s
	}
	return ""
}
