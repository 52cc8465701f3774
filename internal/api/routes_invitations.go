package api

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/handlers"
)

func registerInvitationRoutes(r *gin.Engine, h *handlers.InvitationHandler, requireAuth, optionalAuth gin.HandlerFunc) {
	invitations := r.Group("/api/invitations")
	{
		// The preview works for anonymous callers; a bearer token, when
		// present, additionally resolves the already-member flag.
		invitations.GET("/:token", optionalAuth, h.Get)
		invitations.POST("/:token/accept", requireAuth, h.Accept)
	}
}
