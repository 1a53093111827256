package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"basket-prices/models"
	"basket-prices/utils"
)

// Starter begins a background collection run.
type Starter interface {
	Start(ctx context.Context, req CollectRequest) (string, error)
}

// Scheduler triggers collection runs on a cron schedule. A tick that finds a
// run still in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	starter Starter
	req     CollectRequest
	logger  *utils.Logger
}

// NewScheduler parses spec (standard five-field cron) and prepares a
// Scheduler that starts req on every tick.
func NewScheduler(spec string, starter Starter, req CollectRequest, logger *utils.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	s := &Scheduler{cron: c, starter: starter, req: req, logger: logger}
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid collection schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	id, err := s.starter.Start(context.Background(), s.req)
	switch {
	case errors.Is(err, models.ErrCollectionRunning):
		s.logger.Warn("[scheduler] Skipping scheduled collection: %v", err)
	case err != nil:
		s.logger.Error("[scheduler] Scheduled collection failed to start: %v", err)
	default:
		s.logger.Info("[scheduler] Scheduled collection started: job %s", id)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running tick to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
