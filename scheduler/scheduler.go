package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the driver on a cron schedule and on manual triggers.
// Triggers enqueue a signal rather than running inline; duplicate triggers
// while a run is already pending coalesce into one.
type Scheduler struct {
	cron    *cron.Cron
	driver  *Driver
	trigger chan struct{}
	done    chan struct{}
}

// NewScheduler wraps the driver with cron scheduling.
func NewScheduler(driver *Driver) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		driver:  driver,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start registers the cron schedule and launches the run loop.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.Trigger); err != nil {
		return err
	}

	go s.loop()
	s.cron.Start()
	log.Infof("Price update scheduler started (schedule %q)", schedule)
	return nil
}

// Trigger enqueues a batch run for the loop to pick up. Non-blocking: a
// pending run absorbs further triggers.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Stop halts the cron entries and the run loop. A batch in flight finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	close(s.done)
}

func (s *Scheduler) loop() {
	for {
		select {
		case <-s.trigger:
			if _, err := s.driver.RunAll(context.Background()); err != nil {
				log.Errorf("Batch run failed: %v", err)
			}
		case <-s.done:
			return
		}
	}
}
