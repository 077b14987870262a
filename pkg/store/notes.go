package store

import (
	"context"
	"fmt"
)

// CreateNote attaches a note to a lead.
func (s *Store) CreateNote(ctx context.Context, leadID, userID int, content string) (Note, error) {
	var n Note
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (lead_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, user_id, content, created_at
	`, leadID, userID, content).Scan(&n.ID, &n.LeadID, &n.UserID, &n.Content, &n.CreatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

// ListNotesByLead returns a lead's notes, oldest first.
func (s *Store) ListNotesByLead(ctx context.Context, leadID int) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, user_id, content, created_at
		FROM notes WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note scoped to its author.
func (s *Store) DeleteNote(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
