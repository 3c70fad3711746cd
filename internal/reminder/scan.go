package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/sirupsen/logrus"
)

// ErrScanInProgress is returned when another scan holds the scan lock.
var ErrScanInProgress = errors.New("reminder scan already in progress")

const scanLockKey = "myplants:reminder-scan"

// Notifier delivers a freshly created reminder outside the app.
type Notifier interface {
	Notify(ctx context.Context, plant model.Plant, n model.Notification) error
}

// Failure describes one plant that could not be evaluated.
type Failure struct {
	PlantID uuid.UUID `json:"plant_id"`
	Error   string    `json:"error"`
}

// Summary reports the result of one scan.
type Summary struct {
	EvaluatedAt   time.Time            `json:"evaluated_at"`
	Created       int                  `json:"created"`
	Skipped       int                  `json:"skipped"`
	Failed        int                  `json:"failed"`
	Notifications []model.Notification `json:"notifications"`
	Failures      []Failure            `json:"failures,omitempty"`
}

// Scanner runs the overdue scan: find overdue plants, drop those reminded
// recently, store a reminder for the rest and hand it to the notifier.
// It keeps no state between runs.
type Scanner struct {
	store    Store
	dedup    *Deduplicator
	notifier Notifier
	lock     Locker
	lockTTL  time.Duration
	log      logrus.FieldLogger
}

// NewScanner wires a Scanner. notifier and lock may be nil.
func NewScanner(st Store, window time.Duration, notifier Notifier, lock Locker, log logrus.FieldLogger) *Scanner {
	if lock == nil {
		lock = NoopLocker{}
	}
	return &Scanner{
		store:    st,
		dedup:    NewDeduplicator(st, window),
		notifier: notifier,
		lock:     lock,
		lockTTL:  5 * time.Minute,
		log:      log,
	}
}

// Scan evaluates every overdue plant at now. A failure on one plant is
// recorded in the summary and the scan moves on.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (*Summary, error) {
	unlock, ok, err := s.lock.TryLock(ctx, scanLockKey, s.lockTTL)
	if err != nil {
		// The lock is an optimisation; the unique index still prevents duplicates.
		s.log.WithError(err).Warn("scan: lock unavailable, continuing without it")
	} else if !ok {
		return nil, ErrScanInProgress
	} else {
		defer unlock()
	}

	plants, err := s.store.FindOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find overdue plants: %w", err)
	}

	summary := &Summary{EvaluatedAt: now, Notifications: []model.Notification{}}
	for i := range plants {
		plant := &plants[i]
		log := s.log.WithFields(logrus.Fields{"plant_id": plant.ID, "user_id": plant.UserID})

		outcome, n, err := s.dedup.Evaluate(ctx, plant, now)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{PlantID: plant.ID, Error: err.Error()})
			log.WithError(err).Error("scan: evaluate plant")
			continue
		}

		switch outcome {
		case OutcomeCreated:
			summary.Created++
			summary.Notifications = append(summary.Notifications, *n)
			s.deliver(ctx, log, plant, n)
		case OutcomeSuppressed, OutcomeNotDue:
			summary.Skipped++
		}
	}

	s.log.WithFields(logrus.Fields{
		"overdue": len(plants),
		"created": summary.Created,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("scan: finished")
	return summary, nil
}

func (s *Scanner) deliver(ctx context.Context, log logrus.FieldLogger, plant *model.Plant, n *model.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, *plant, *n); err != nil {
		log.WithError(err).Warn("scan: reminder stored but delivery failed")
	}
}
