package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/app"
	iauth "github.com/andrelmts/taskhive/internal/auth"
	"github.com/andrelmts/taskhive/internal/handlers"
	"github.com/andrelmts/taskhive/internal/middleware"
	"github.com/andrelmts/taskhive/internal/ratelimit"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware, constructs the service
// layer, and registers all routes. A nil rateStore falls back to an in-memory
// store, which is fine for tests and single-instance deployments.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, mailer mail.Mailer, rateStore middleware.RateStore) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	members, err := services.NewMembershipService(db)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	workspaces, err := services.NewWorkspaceService(db, members)
	if err != nil {
		return nil, err
	}
	invitations, err := services.NewInvitationService(db, members, mailer,
		services.WithInvitationBaseURL(cfg.Server.BaseURL),
		services.WithInvitationExpiry(cfg.Invitations.Expiry),
		services.WithInvitationTokenSize(cfg.Invitations.TokenLength),
	)
	if err != nil {
		return nil, err
	}
	projects, err := services.NewProjectService(db)
	if err != nil {
		return nil, err
	}
	sprints, err := services.NewSprintService(db)
	if err != nil {
		return nil, err
	}
	tasks, err := services.NewTaskService(db)
	if err != nil {
		return nil, err
	}
	comments, err := services.NewCommentService(db, members)
	if err != nil {
		return nil, err
	}
	attachments, err := services.NewAttachmentService(db, members)
	if err != nil {
		return nil, err
	}
	timeLogs, err := services.NewTimeLogService(db)
	if err != nil {
		return nil, err
	}

	inviteLimiter := ratelimit.New(ratelimit.NewMemoryStore())

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if rateStore == nil {
		rateStore = middleware.NewMemoryRateStore()
	}
	r.Use(middleware.RateLimitWithStore(rateStore, globalRequests(cfg), globalWindow(cfg)))

	r.NoRoute(middleware.NotFoundHandler)

	registerHealthRoutes(r, cfg)

	requireAuth := middleware.Auth(jwt)
	optionalAuth := middleware.OptionalAuth(jwt)

	authHandler := handlers.NewAuthHandler(users, jwt)
	registerAuthRoutes(r, authHandler, requireAuth)

	workspaceHandler := handlers.NewWorkspaceHandler(workspaces, members)
	invitationHandler := handlers.NewInvitationHandler(invitations, inviteLimiter).
		WithRateLimit(ratelimit.Config{
			Prefix:      "invite",
			MaxAttempts: cfg.RateLimit.InviteAttempts,
			Window:      cfg.RateLimit.InviteWindow,
		})
	projectHandler := handlers.NewProjectHandler(projects)
	sprintHandler := handlers.NewSprintHandler(sprints, projects, members)
	taskHandler := handlers.NewTaskHandler(tasks, projects, members)
	commentHandler := handlers.NewCommentHandler(comments, tasks, projects, members)
	attachmentHandler := handlers.NewAttachmentHandler(attachments, tasks, projects, members)
	timeLogHandler := handlers.NewTimeLogHandler(timeLogs, tasks, projects, members)

	registerInvitationRoutes(r, invitationHandler, requireAuth, optionalAuth)

	api := r.Group("/api")
	api.Use(requireAuth)

	registerWorkspaceRoutes(api, workspaceHandler, invitationHandler, projectHandler, members)
	registerProjectRoutes(api, sprintHandler, taskHandler)
	registerTaskRoutes(api, commentHandler, attachmentHandler, timeLogHandler)

	return r, nil
}

func globalRequests(cfg *app.Config) int {
	if cfg.RateLimit.GlobalRequests > 0 {
		return cfg.RateLimit.GlobalRequests
	}
	return 100
}

func globalWindow(cfg *app.Config) time.Duration {
	if cfg.RateLimit.GlobalWindow > 0 {
		return cfg.RateLimit.GlobalWindow
	}
	return time.Minute
}

func registerHealthRoutes(r *gin.Engine, cfg *app.Config) {
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}
