// Package schedule runs a job on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron spec.
type Scheduler struct {
	c       *cron.Cron
	job     Job
	timeout time.Duration
	log     zerolog.Logger
	id      cron.EntryID

	// ctx is the parent of every run; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// New parses spec and registers job. loc defaults to time.Local; a zero
// timeout lets each run take as long as it needs.
func New(spec string, loc *time.Location, timeout time.Duration, log zerolog.Logger, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		c:       cron.New(cron.WithLocation(loc), cron.WithParser(parser)),
		job:     job,
		timeout: timeout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	id, err := s.c.AddFunc(spec, s.run)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.id = id
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() { s.c.Start() }

// Stop stops the scheduler, cancels the context of a running job and waits
// for it to return. A stopped Scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.c.Stop().Done()
}

// Next returns the time of the next run, or zero before Start.
func (s *Scheduler) Next() time.Time { return s.c.Entry(s.id).Next }

func (s *Scheduler) run() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.log.Info().Msg("schedule: run started")
	if err := s.job(ctx); err != nil {
		s.log.Error().Err(err).Msg("schedule: run failed")
		return
	}
	s.log.Info().Msg("schedule: run finished")
}

// Validate reports whether spec is a valid five-field cron spec.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}
