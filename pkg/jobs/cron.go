package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
)

type InvitePurger interface {
	PurgeExpiredInvites(ctx context.Context) error
}

type StageCounter interface {
	CountLeadsByStatus(ctx context.Context) (map[string]int, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	teams   InvitePurger
	store   StageCounter
	stages  []string
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewScheduler(teams InvitePurger, store StageCounter, stages []string, m *metrics.Metrics, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		teams:   teams,
		store:   store,
		stages:  stages,
		metrics: m,
		log:     log,
	}
}

// Start registers and launches the jobs. Stage gauges are also refreshed
// once at startup so dashboards aren't empty until the first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.purgeInvites); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 15m", s.refreshStageGauges); err != nil {
		return err
	}

	go s.refreshStageGauges()
	s.cron.Start()
	s.log.Info("cron scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) purgeInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.teams.PurgeExpiredInvites(ctx); err != nil {
		s.log.Error("purge expired invites", "error", err)
	}
}

func (s *Scheduler) refreshStageGauges() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := s.store.CountLeadsByStatus(ctx)
	if err != nil {
		s.log.Error("count leads by status", "error", err)
		return
	}
	for _, stage := range s.stages {
		s.metrics.SetLeadsPerStage(stage, counts[stage])
	}
}
