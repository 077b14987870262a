package comments

import (
	"context"
	"time"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

type Store interface {
	CreateComment(ctx context.Context, leadID, userID int, content string) (store.Comment, error)
	ListCommentsByLead(ctx context.Context, leadID int) ([]store.Comment, error)
	GetLead(ctx context.Context, id, userID int) (store.Lead, error)
	GetUserByID(ctx context.Context, id int) (store.User, error)
}

// Broadcaster pushes an event to everyone watching a lead.
type Broadcaster interface {
	Broadcast(leadID int, payload any)
}

// Event is the wire shape pushed to lead watchers when a comment lands.
type Event struct {
	Type        string    `json:"type"`
	LeadID      int       `json:"leadId"`
	CommentID   int       `json:"commentId"`
	AuthorEmail string    `json:"authorEmail"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service manages the threaded discussion on a lead and pushes new comments
// to live watchers.
type Service struct {
	store       Store
	broadcaster Broadcaster
	log         logger.Logger
}

func NewService(s Store, b Broadcaster, log logger.Logger) *Service {
	return &Service{store: s, broadcaster: b, log: log}
}

// Add appends a comment to the lead's thread and broadcasts it to the
// lead's watchers.
func (s *Service) Add(ctx context.Context, leadID, userID int, content string) (store.Comment, error) {
	if _, err := s.store.GetLead(ctx, leadID, userID); err != nil {
		return store.Comment{}, err
	}

	comment, err := s.store.CreateComment(ctx, leadID, userID, content)
	if err != nil {
		return store.Comment{}, err
	}

	authorEmail := ""
	if author, err := s.store.GetUserByID(ctx, userID); err == nil {
		authorEmail = author.Email
	}

	s.broadcaster.Broadcast(leadID, Event{
		Type:        "comment.added",
		LeadID:      leadID,
		CommentID:   comment.ID,
		AuthorEmail: authorEmail,
		Content:     comment.Content,
		CreatedAt:   comment.CreatedAt,
	})
	return comment, nil
}

// ListForLead returns the lead's comment thread, oldest first.
func (s *Service) ListForLead(ctx context.Context, leadID, userID int) ([]store.Comment, error) {
	if _, err := s.store.GetLead(ctx, leadID, userID); err != nil {
		return nil, err
	}
	return s.store.ListCommentsByLead(ctx, leadID)
}
