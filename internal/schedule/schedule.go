// Package schedule computes watering due dates. Every function takes the
// reference time explicitly and never reads the system clock.
package schedule

import (
	"math"
	"time"

	"github.com/pathakanu/myPlants/internal/model"
)

// Day is the fixed length of one watering-frequency unit.
const Day = 24 * time.Hour

// Status classifies a plant relative to an evaluation time.
type Status string

const (
	StatusUnscheduled Status = "unscheduled"
	StatusOverdue     Status = "overdue"
	StatusDueToday    Status = "due_today"
	StatusUpcoming    Status = "upcoming"
)

// NextWatering returns reference + frequencyDays fixed-length days.
// frequencyDays is validated by callers; it is not clamped here.
func NextWatering(reference time.Time, frequencyDays int) time.Time {
	return reference.Add(time.Duration(frequencyDays) * Day)
}

// IsOverdue reports whether the plant's next watering is at or before now.
// Plants without a next watering date are never overdue.
func IsOverdue(p *model.Plant, now time.Time) bool {
	if p.NextWatering == nil {
		return false
	}
	return !p.NextWatering.After(now)
}

// DaysUntil returns ceil((next_watering - now) / 1 day). The boolean is false
// when the plant is unscheduled. Negative values mean the plant is overdue.
func DaysUntil(p *model.Plant, now time.Time) (int, bool) {
	if p.NextWatering == nil {
		return 0, false
	}
	diff := p.NextWatering.Sub(now)
	return int(math.Ceil(float64(diff) / float64(Day))), true
}

// StatusOf classifies the plant for display. A plant that is not yet overdue
// but falls due on now's calendar day (in now's location) is StatusDueToday.
func StatusOf(p *model.Plant, now time.Time) Status {
	switch {
	case p.NextWatering == nil:
		return StatusUnscheduled
	case IsOverdue(p, now):
		return StatusOverdue
	case sameDay(p.NextWatering.In(now.Location()), now):
		return StatusDueToday
	default:
		return StatusUpcoming
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
