package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrelmts/taskhive/internal/models"
)

// DatabaseStore keeps rate counters in the primary SQL database. It is the
// default backend when Redis is not configured.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed counter store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// IncrementWithTTL bumps the counter for key inside a row-locked transaction.
// An expired or missing row starts a fresh window; rows whose window already
// passed are opportunistically reaped on the way.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()

	var counter models.RateCounter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&counter, "key = ?", key).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) || counter.ExpiresAt.Before(now) {
			// Stale rows for other keys go with the same sweep.
			if err := tx.Where("expires_at < ?", now).Delete(&models.RateCounter{}).Error; err != nil {
				return err
			}
			counter = models.RateCounter{Key: key, Count: 1, ExpiresAt: now.Add(window)}
			return tx.Create(&counter).Error
		}

		counter.Count++
		return tx.Save(&counter).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return counter.Count, counter.ExpiresAt.Sub(now), nil
}
