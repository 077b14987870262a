package notes

import (
	"context"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

type Store interface {
	CreateNote(ctx context.Context, leadID, userID int, content string) (store.Note, error)
	ListNotesByLead(ctx context.Context, leadID int) ([]store.Note, error)
	DeleteNote(ctx context.Context, id, userID int) error
	GetLead(ctx context.Context, id, userID int) (store.Lead, error)
}

// Service manages free-text notes attached to leads.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(s Store, log logger.Logger) *Service {
	return &Service{store: s, log: log}
}

// Create attaches a note to one of the user's leads.
func (s *Service) Create(ctx context.Context, leadID, userID int, content string) (store.Note, error) {
	if _, err := s.store.GetLead(ctx, leadID, userID); err != nil {
		return store.Note{}, err
	}
	return s.store.CreateNote(ctx, leadID, userID, content)
}

// ListForLead returns the notes on one of the user's leads, newest first.
func (s *Service) ListForLead(ctx context.Context, leadID, userID int) ([]store.Note, error) {
	if _, err := s.store.GetLead(ctx, leadID, userID); err != nil {
		return nil, err
	}
	return s.store.ListNotesByLead(ctx, leadID)
}

// Delete removes a note the user authored.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.store.DeleteNote(ctx, id, userID)
}
