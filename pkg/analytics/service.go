package analytics

import (
	"context"
	"fmt"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

// Reader is the slice of the store the analytics service needs.
type Reader interface {
	ListLeadsByUser(ctx context.Context, userID int) ([]store.Lead, error)
	ListTransitionsByUser(ctx context.Context, userID int) ([]store.Transition, error)
	ListActivitiesAsc(ctx context.Context, userID int) ([]store.Activity, error)
}

// Service exposes pipeline metrics over the store.
type Service struct {
	reader Reader
	engine *Engine
	log    logger.Logger
}

func NewService(reader Reader, engine *Engine, log logger.Logger) *Service {
	return &Service{reader: reader, engine: engine, log: log}
}

// Stages returns the configured funnel stage order.
func (s *Service) Stages() []string {
	return s.engine.Stages()
}

// PipelineMetrics computes the funnel report for one user. Structured
// transition rows are preferred; accounts predating the transitions table
// fall back to mining the activity log.
func (s *Service) PipelineMetrics(ctx context.Context, userID int) ([]Metric, error) {
	rows, err := s.reader.ListLeadsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]Lead, len(rows))
	for i, l := range rows {
		leads[i] = Lead{ID: l.ID, Name: l.Name, Status: l.Status, CreatedAt: l.CreatedAt}
	}

	trRows, err := s.reader.ListTransitionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	if len(trRows) > 0 {
		transitions := make([]Transition, len(trRows))
		for i, t := range trRows {
			transitions[i] = Transition{
				LeadID:     t.LeadID,
				LeadName:   t.LeadName,
				From:       t.FromStatus,
				To:         t.ToStatus,
				OccurredAt: t.OccurredAt,
			}
		}
		return s.engine.Compute(leads, transitions)
	}

	s.log.Debug("no transition history, falling back to activity log", "user_id", userID)
	actRows, err := s.reader.ListActivitiesAsc(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	activities := make([]Activity, len(actRows))
	for i, a := range actRows {
		activities[i] = Activity{Action: a.Action, CreatedAt: a.CreatedAt}
	}
	return s.engine.ComputeFromActivity(leads, activities)
}
