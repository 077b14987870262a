package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

// CreateCostCredits is deducted from the owner's balance per created lead.
const CreateCostCredits = 1

// Store is the slice of persistence the lead service needs.
type Store interface {
	CreateLead(ctx context.Context, userID int, name, email, status string) (store.Lead, error)
	GetLead(ctx context.Context, id, userID int) (store.Lead, error)
	ListLeadsByUser(ctx context.Context, userID int) ([]store.Lead, error)
	UpdateLead(ctx context.Context, id, userID int, name, email, status string) (store.Lead, error)
	UpdateLeadStatus(ctx context.Context, id, userID int, status string) (store.Lead, error)
	DeleteLead(ctx context.Context, id, userID int) (store.Lead, error)
	CreateTransition(ctx context.Context, t store.Transition) (store.Transition, error)
	AppendActivity(ctx context.Context, userID int, action string) (store.Activity, error)
	DeductCredits(ctx context.Context, userID, amount int) (int, error)
	RefundCredits(ctx context.Context, userID, amount int) (int, error)
}

// Service owns lead CRUD, the credit charge on creation, and the activity
// and transition records every stage change leaves behind.
type Service struct {
	store   Store
	stages  []string
	isStage map[string]bool
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(s Store, stages []string, log logger.Logger, m *metrics.Metrics) *Service {
	isStage := make(map[string]bool, len(stages))
	for _, st := range stages {
		isStage[st] = true
	}
	return &Service{store: s, stages: stages, isStage: isStage, log: log, metrics: m}
}

// InitialStage returns the stage newly created leads start in.
func (s *Service) InitialStage() string {
	return s.stages[0]
}

func (s *Service) validateStage(stage string) error {
	if !s.isStage[stage] {
		return fmt.Errorf("unknown pipeline stage %q", stage)
	}
	return nil
}

// List returns the user's leads ordered by creation time.
func (s *Service) List(ctx context.Context, userID int) ([]store.Lead, error) {
	return s.store.ListLeadsByUser(ctx, userID)
}

// Get returns one lead owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (store.Lead, error) {
	return s.store.GetLead(ctx, id, userID)
}

// Create charges one credit, creates the lead in the initial stage (or the
// given one) and writes the creation and stage-entry records.
func (s *Service) Create(ctx context.Context, userID int, name, email, status string) (store.Lead, error) {
	if status == "" {
		status = s.InitialStage()
	}
	if err := s.validateStage(status); err != nil {
		return store.Lead{}, err
	}

	remaining, err := s.store.DeductCredits(ctx, userID, CreateCostCredits)
	if err != nil {
		return store.Lead{}, err
	}

	lead, err := s.store.CreateLead(ctx, userID, name, email, status)
	if err != nil {
		// The charge must not stick when the insert fails.
		if _, rerr := s.store.RefundCredits(ctx, userID, CreateCostCredits); rerr != nil {
			s.log.Error("refund lead credit", "user_id", userID, "error", rerr)
		}
		return store.Lead{}, fmt.Errorf("create lead: %w", err)
	}

	s.appendActivity(ctx, userID, fmt.Sprintf("Created lead: %s", lead.Name))
	s.appendActivity(ctx, userID, fmt.Sprintf("Lead %q status changed to %s", lead.Name, status))
	s.recordTransition(ctx, lead, "", status)

	s.metrics.RecordLeadCreated()
	s.log.Info("lead created",
		"lead_id", lead.ID, "user_id", userID, "status", status, "credits_remaining", remaining)
	return lead, nil
}

// Update replaces the lead's fields. An empty status keeps the current
// stage; a status change goes through the same bookkeeping as UpdateStatus.
func (s *Service) Update(ctx context.Context, id, userID int, name, email, status string) (store.Lead, error) {
	prev, err := s.store.GetLead(ctx, id, userID)
	if err != nil {
		return store.Lead{}, err
	}
	if status == "" {
		status = prev.Status
	}
	if err := s.validateStage(status); err != nil {
		return store.Lead{}, err
	}

	lead, err := s.store.UpdateLead(ctx, id, userID, name, email, status)
	if err != nil {
		return store.Lead{}, fmt.Errorf("update lead: %w", err)
	}

	if prev.Status != status {
		s.appendActivity(ctx, userID,
			fmt.Sprintf("Lead %q status changed from %s to %s", lead.Name, prev.Status, status))
		s.recordTransition(ctx, lead, prev.Status, status)
	}
	return lead, nil
}

// UpdateStatus moves the lead to another stage. Setting the stage it is
// already in is a no-op and leaves no records.
func (s *Service) UpdateStatus(ctx context.Context, id, userID int, status string) (store.Lead, error) {
	if err := s.validateStage(status); err != nil {
		return store.Lead{}, err
	}
	prev, err := s.store.GetLead(ctx, id, userID)
	if err != nil {
		return store.Lead{}, err
	}
	if prev.Status == status {
		return prev, nil
	}

	lead, err := s.store.UpdateLeadStatus(ctx, id, userID, status)
	if err != nil {
		return store.Lead{}, fmt.Errorf("update lead status: %w", err)
	}

	s.appendActivity(ctx, userID,
		fmt.Sprintf("Lead %q status changed from %s to %s", lead.Name, prev.Status, status))
	s.recordTransition(ctx, lead, prev.Status, status)
	return lead, nil
}

// Delete removes the lead and records its departure from the funnel.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	lead, err := s.store.DeleteLead(ctx, id, userID)
	if err != nil {
		return err
	}

	s.appendActivity(ctx, userID, fmt.Sprintf("Lead deleted: %s", lead.Name))
	s.recordTransition(ctx, lead, lead.Status, "")

	s.log.Info("lead deleted", "lead_id", id, "user_id", userID)
	return nil
}

// appendActivity writes a log record. Activity is best-effort bookkeeping:
// a write failure is logged, not surfaced, so the primary operation stands.
func (s *Service) appendActivity(ctx context.Context, userID int, action string) {
	if _, err := s.store.AppendActivity(ctx, userID, action); err != nil {
		s.log.Error("append activity", "user_id", userID, "action", action, "error", err)
	}
}

func (s *Service) recordTransition(ctx context.Context, lead store.Lead, from, to string) {
	_, err := s.store.CreateTransition(ctx, store.Transition{
		LeadID:     lead.ID,
		UserID:     lead.UserID,
		LeadName:   lead.Name,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("record transition", "lead_id", lead.ID, "error", err)
	}
}
