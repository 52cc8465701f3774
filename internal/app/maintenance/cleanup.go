package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/pkg/logger"
	"github.com/andrelmts/taskhive/pkg/metrics"
)

const (
	defaultSchedule  = "@every 1h"
	defaultRetention = 30 * 24 * time.Hour
)

// Sweeper runs background maintenance: marking overdue pending invitations as
// expired and pruning terminal invitations past the retention window. Expiry
// is also applied lazily on read; the sweep keeps listings and the database
// tidy for invitations nobody looks at.
type Sweeper struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	schedule  string
	retention time.Duration
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithRetention adjusts how long terminal invitations are kept before pruning.
func WithRetention(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(db *gorm.DB, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		db:        db,
		now:       time.Now,
		schedule:  defaultSchedule,
		retention: defaultRetention,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("invitation sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes the sweep once. Used by the scheduler, tests, and graceful
// shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	expired, err := ExpireOverdueInvitations(ctx, s.db, s.now())
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if expired > 0 {
		s.log.Info("marked overdue invitations expired", zap.Int64("count", expired))
	}

	pruned, err := PruneTerminalInvitations(ctx, s.db, s.now().Add(-s.retention))
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if pruned > 0 {
		s.log.Info("pruned terminal invitations", zap.Int64("count", pruned))
	}

	return errs
}

// ExpireOverdueInvitations transitions pending invitations past their expiry
// to the expired state. Terminal invitations are never touched.
func ExpireOverdueInvitations(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("expire invitations: db is required")
	}

	result := db.WithContext(ctx).
		Model(&models.WorkspaceInvitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, now).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		metrics.InvitationEvents.WithLabelValues("expired").Add(float64(result.RowsAffected))
	}

	return result.RowsAffected, nil
}

// PruneTerminalInvitations deletes accepted and expired invitations whose last
// update predates the cutoff.
func PruneTerminalInvitations(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("prune invitations: db is required")
	}

	result := db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]models.InvitationStatus{models.InvitationAccepted, models.InvitationExpired}, cutoff).
		Delete(&models.WorkspaceInvitation{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
