package api

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, h *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", requireAuth, h.Me)
	}
}
