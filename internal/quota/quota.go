// Package quota enforces the monthly generation allowance of the free plan.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExceededError is returned when a free profile has used its monthly allowance.
type ExceededError struct {
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("free plan limit of %d generations per month reached; upgrade to Pro for unlimited generations", e.Limit)
}

// NeedsReset reports whether now falls in a different calendar month (UTC) than resetAt.
func NeedsReset(now, resetAt time.Time) bool {
	n, r := now.UTC(), resetAt.UTC()
	return n.Year() != r.Year() || n.Month() != r.Month()
}

// Allowed reports whether another generation may start.
func Allowed(plan string, used, limit int) bool {
	return plan == models.PlanPro || used < limit
}

// Tracker applies the lazy monthly reset and charges usage against the store.
type Tracker struct {
	db    *gorm.DB
	limit int
	now   func() time.Time
}

func NewTracker(db *gorm.DB, limit int) *Tracker {
	return &Tracker{db: db, limit: limit, now: time.Now}
}

// WithClock replaces the wall clock; used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) Limit() int {
	return t.limit
}

func (t *Tracker) Now() time.Time {
	return t.now().UTC()
}

// CheckAndMaybeReset starts a new counting window when the month has rolled over, persisting
// the reset immediately, then reports whether the profile may generate. The profile is updated
// in place.
func (t *Tracker) CheckAndMaybeReset(ctx context.Context, p *models.Profile) (bool, error) {
	now := t.Now()
	if NeedsReset(now, p.GenerationsResetAt) {
		err := t.db.WithContext(ctx).Model(&models.Profile{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"generations_used":     0,
				"generations_reset_at": now,
			}).Error
		if err != nil {
			return false, fmt.Errorf("failed to reset usage: %w", err)
		}
		p.GenerationsUsed = 0
		p.GenerationsResetAt = now
	}
	return Allowed(p.Plan, p.GenerationsUsed, t.limit), nil
}

// Consume charges one generation inside tx. The increment is conditioned on the allowance in
// the same statement, so concurrent requests cannot push a free profile past the limit.
func (t *Tracker) Consume(tx *gorm.DB, profileID uuid.UUID) error {
	res := tx.Model(&models.Profile{}).
		Where("id = ? AND (plan = ? OR generations_used < ?)", profileID, models.PlanPro, t.limit).
		Update("generations_used", gorm.Expr("generations_used + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to record usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &ExceededError{Limit: t.limit}
	}
	return nil
}

// Remaining is the number of generations left this month, or -1 for unlimited plans.
func Remaining(p *models.Profile, limit int) int {
	if p.IsPro() {
		return -1
	}
	if left := limit - p.GenerationsUsed; left > 0 {
		return left
	}
	return 0
}
