// Package discount maps a product's remaining shelf life to a discount tier.
package discount

import (
	"math"
	"strings"
	"time"

	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

// DateLayout is the wire format of expiry and received dates.
const DateLayout = "2006-01-02"

// Horizon is the number of days before expiry at which discounting begins.
const Horizon = 30

const day = 24 * time.Hour

type tier struct {
	maxDays int
	percent int
}

// tiers are checked in order; the first whose maxDays covers the remaining
// days wins. Anything beyond Horizon or already expired earns nothing.
var tiers = []tier{
	{maxDays: 7, percent: 30},
	{maxDays: 15, percent: 20},
	{maxDays: Horizon, percent: 10},
}

// DaysToExpiry returns ceil((expiry - now) / 24h).
func DaysToExpiry(expiry, now time.Time) int {
	return int(math.Ceil(float64(expiry.Sub(now)) / float64(day)))
}

// Tier returns the discount percent for a whole number of days to expiry.
func Tier(days int) int {
	if days <= 0 || days > Horizon {
		return 0
	}
	for _, t := range tiers {
		if days <= t.maxDays {
			return t.percent
		}
	}
	return 0
}

// Compute returns the discount percent for an item expiring at expiry as
// observed at now. Both instants are required.
func Compute(expiry, now time.Time) (int, error) {
	if expiry.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "expiry date is required")
	}
	if now.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "reference time is required")
	}
	return Tier(DaysToExpiry(expiry, now)), nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	parsed, err := time.ParseInLocation(DateLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be formatted YYYY-MM-DD")
	}
	return parsed, nil
}

// Engine binds Compute to a clock so callers do not thread "now" around.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine reading the given clock; nil means time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// ForExpiry computes the discount for expiry at the engine's current time.
func (e *Engine) ForExpiry(expiry time.Time) (int, error) {
	return Compute(expiry, e.now())
}

// Now exposes the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}
