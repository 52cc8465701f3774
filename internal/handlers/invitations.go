package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/ratelimit"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/errors"
	"github.com/andrelmts/taskhive/pkg/metrics"
	"github.com/andrelmts/taskhive/pkg/response"
)

// defaultInvitationLimit caps invitation sends per inviter over a sliding hour.
var defaultInvitationLimit = ratelimit.Config{
	Prefix:      "invite",
	MaxAttempts: 20,
	Window:      time.Hour,
}

// InvitationHandler manages the invitation lifecycle over HTTP.
type InvitationHandler struct {
	invitations *services.InvitationService
	limiter     *ratelimit.Limiter
	limit       ratelimit.Config
}

func NewInvitationHandler(invitations *services.InvitationService, limiter *ratelimit.Limiter) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		limiter:     limiter,
		limit:       defaultInvitationLimit,
	}
}

// WithRateLimit overrides the per-inviter send budget.
func (h *InvitationHandler) WithRateLimit(cfg ratelimit.Config) *InvitationHandler {
	if cfg.MaxAttempts > 0 && cfg.Window > 0 {
		if cfg.Prefix == "" {
			cfg.Prefix = defaultInvitationLimit.Prefix
		}
		h.limit = cfg
	}
	return h
}

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member"`
}

// POST /api/workspaces/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	var req createInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	inviterID := currentUserID(c)

	// Check before the send, record only after success: a rejected or failed
	// invitation never consumes budget.
	result := h.limiter.Check(inviterID, h.limit)
	if !result.Allowed {
		retry := ratelimit.RetrySeconds(result.ResetIn)
		metrics.RateLimitRejections.WithLabelValues(h.limit.Prefix).Inc()
		c.Header("Retry-After", fmt.Sprintf("%d", retry))
		response.Error(c, errors.ErrRateLimit.WithMessage(
			fmt.Sprintf("Too many invitations, retry in %d seconds", retry)))
		return
	}

	invitation, token, err := h.invitations.Create(requestContext(c), services.CreateInvitationInput{
		WorkspaceID:  c.Param("id"),
		InvitedEmail: req.Email,
		Role:         models.WorkspaceRole(req.Role),
		InviterID:    inviterID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.limiter.Record(inviterID, h.limit.Prefix)

	// The raw token appears in this response exactly once; only its hash is stored.
	response.Success(c, http.StatusCreated, gin.H{
		"invitation": invitation,
		"token":      token,
	})
}

// GET /api/invitations/:token
//
// Mounted with optional authentication: anonymous callers get the preview,
// authenticated callers additionally learn whether they already belong to the
// workspace.
func (h *InvitationHandler) Get(c *gin.Context) {
	details, err := h.invitations.Get(requestContext(c), c.Param("token"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, details)
}

// POST /api/invitations/:token/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	result, err := h.invitations.Accept(requestContext(c), c.Param("token"), services.Subject{
		ID:    currentUserID(c),
		Email: currentUserEmail(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GET /api/workspaces/:id/invitations
func (h *InvitationHandler) ListByWorkspace(c *gin.Context) {
	invitations, err := h.invitations.ListByWorkspace(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitations)
}

// DELETE /api/workspaces/:id/invitations/:invitationID
func (h *InvitationHandler) Delete(c *gin.Context) {
	if err := h.invitations.Delete(requestContext(c), c.Param("id"), c.Param("invitationID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
