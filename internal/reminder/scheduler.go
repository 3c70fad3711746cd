package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler triggers the overdue scan on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	scanner *Scanner
	spec    string
	now     func() time.Time
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewScheduler creates a scheduler running scanner on spec (standard cron
// syntax or descriptors such as "@every 30m") in loc.
func NewScheduler(scanner *Scanner, spec string, loc *time.Location, log logrus.FieldLogger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		scanner: scanner,
		spec:    spec,
		now:     time.Now,
		timeout: 5 * time.Minute,
		log:     log,
	}
}

// Start registers the scan job and starts the scheduler loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("schedule", s.spec).Info("scheduler: reminder scan registered")
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single scan at the current time.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.scanner.Scan(ctx, s.now()); err != nil {
		if errors.Is(err, ErrScanInProgress) {
			s.log.Info("scheduler: previous scan still running, skipping")
			return
		}
		s.log.WithError(err).Error("scheduler: scan failed")
	}
}
