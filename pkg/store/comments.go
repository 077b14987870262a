package store

import (
	"context"
	"fmt"
)

// CreateComment adds a comment to a lead's discussion thread.
func (s *Store) CreateComment(ctx context.Context, leadID, userID int, content string) (Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (lead_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, user_id, content, created_at
	`, leadID, userID, content).Scan(&c.ID, &c.LeadID, &c.UserID, &c.Content, &c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// ListCommentsByLead returns a lead's comments, oldest first.
func (s *Store) ListCommentsByLead(ctx context.Context, leadID int) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, user_id, content, created_at
		FROM comments WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.LeadID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
