package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper is a store with expiring entries
type Sweeper interface {
	Sweep() int
}

// Scheduler runs serve-mode housekeeping on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	sweeper Sweeper
}

// NewScheduler creates a scheduler that sweeps expired sessions on spec
func NewScheduler(spec string, sweeper Sweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		sweeper: sweeper,
	}
}

// Start schedules the sweep job and starts the cron runner
func (s *Scheduler) Start() error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, s.SweepSessions); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Session sweep scheduled")

	return nil
}

// Stop stops the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// SweepSessions removes expired sessions once
func (s *Scheduler) SweepSessions() {
	start := time.Now()
	removed := s.sweeper.Sweep()

	log.Info().
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Session sweep complete")
}
