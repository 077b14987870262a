package tags

import (
	"context"
	"fmt"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

type Store interface {
	CreateTag(ctx context.Context, userID int, name string) (store.Tag, error)
	ListTagsByUser(ctx context.Context, userID int) ([]store.Tag, error)
	ListTagsByLead(ctx context.Context, leadID int) ([]store.Tag, error)
	DeleteTag(ctx context.Context, id, userID int) error
	GetTag(ctx context.Context, id, userID int) (store.Tag, error)
	AssignTag(ctx context.Context, leadID, tagID int) error
	RemoveTag(ctx context.Context, leadID, tagID int) error
	GetLead(ctx context.Context, id, userID int) (store.Lead, error)
	AppendActivity(ctx context.Context, userID int, action string) (store.Activity, error)
}

// Service manages per-user tag vocabularies and their lead assignments.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(s Store, log logger.Logger) *Service {
	return &Service{store: s, log: log}
}

// Create adds a tag to the user's vocabulary. Names are unique per user.
func (s *Service) Create(ctx context.Context, userID int, name string) (store.Tag, error) {
	tag, err := s.store.CreateTag(ctx, userID, name)
	if err != nil {
		return store.Tag{}, err
	}
	s.log.Info("tag created", "tag_id", tag.ID, "user_id", userID)
	return tag, nil
}

func (s *Service) List(ctx context.Context, userID int) ([]store.Tag, error) {
	return s.store.ListTagsByUser(ctx, userID)
}

// ListForLead returns the tags assigned to one of the user's leads.
func (s *Service) ListForLead(ctx context.Context, leadID, userID int) ([]store.Tag, error) {
	if _, err := s.store.GetLead(ctx, leadID, userID); err != nil {
		return nil, err
	}
	return s.store.ListTagsByLead(ctx, leadID)
}

// Delete removes the tag and, via cascade, all of its lead assignments.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.store.DeleteTag(ctx, id, userID)
}

// Assign attaches a tag to a lead. Both must belong to the user; assigning
// an already-assigned tag is a no-op.
func (s *Service) Assign(ctx context.Context, leadID, tagID, userID int) (store.Lead, error) {
	lead, err := s.store.GetLead(ctx, leadID, userID)
	if err != nil {
		return store.Lead{}, err
	}
	tag, err := s.store.GetTag(ctx, tagID, userID)
	if err != nil {
		return store.Lead{}, err
	}
	if err := s.store.AssignTag(ctx, leadID, tagID); err != nil {
		return store.Lead{}, fmt.Errorf("assign tag: %w", err)
	}
	if _, err := s.store.AppendActivity(ctx, userID,
		fmt.Sprintf("Tagged %s with %s", lead.Name, tag.Name)); err != nil {
		s.log.Error("append activity", "error", err)
	}
	return lead, nil
}

// Remove detaches a tag from a lead.
func (s *Service) Remove(ctx context.Context, leadID, tagID, userID int) (store.Lead, error) {
	lead, err := s.store.GetLead(ctx, leadID, userID)
	if err != nil {
		return store.Lead{}, err
	}
	if _, err := s.store.GetTag(ctx, tagID, userID); err != nil {
		return store.Lead{}, err
	}
	if err := s.store.RemoveTag(ctx, leadID, tagID); err != nil {
		return store.Lead{}, fmt.Errorf("remove tag: %w", err)
	}
	return lead, nil
}
