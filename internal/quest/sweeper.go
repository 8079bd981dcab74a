package quest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jeffanddom/organizex/internal/logging"
)

// DefaultSweepSchedule runs the sweep every five minutes
const DefaultSweepSchedule = "@every 5m"

// Sweeper runs Engine.Sweep on a cron schedule
type Sweeper struct {
	cron    *cron.Cron
	engine  *Engine
	logger  logging.Logger
	timeout time.Duration
}

// ValidateSchedule checks a cron spec or descriptor such as "@hourly"
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return nil
}

// NewSweeper registers the sweep job. Call Start to begin running it.
func NewSweeper(engine *Engine, schedule string, logger logging.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		engine:  engine,
		logger:  logger,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	expired, err := s.engine.Sweep(ctx)
	if err != nil {
		s.logger.Error("quest sweep failed", "error", err)
		return
	}
	s.logger.Debug("quest sweep complete", "expired", len(expired))
}

// Start runs the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
