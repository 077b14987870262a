package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateTag inserts a per-user tag. Returns ErrDuplicate on a name collision.
func (s *Store) CreateTag(ctx context.Context, userID int, name string) (Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at
	`, userID, name).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Tag{}, ErrDuplicate
		}
		return Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return t, nil
}

// ListTagsByUser returns the user's tags, oldest first.
func (s *Store) ListTagsByUser(ctx context.Context, userID int) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM tags WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

// ListTagsByLead returns the tags assigned to a lead.
func (s *Store) ListTagsByLead(ctx context.Context, leadID int) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN lead_tags lt ON lt.tag_id = t.id
		WHERE lt.lead_id = $1
		ORDER BY t.name ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

// DeleteTag removes a tag scoped to its owner. Assignments cascade.
func (s *Store) DeleteTag(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTag fetches a tag scoped to its owner.
func (s *Store) GetTag(ctx context.Context, id, userID int) (Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM tags WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, ErrNotFound
	}
	if err != nil {
		return Tag{}, fmt.Errorf("lookup tag: %w", err)
	}
	return t, nil
}

// AssignTag links a tag to a lead. Idempotent.
func (s *Store) AssignTag(ctx context.Context, leadID, tagID int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lead_tags (lead_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (lead_id, tag_id) DO NOTHING
	`, leadID, tagID)
	if err != nil {
		return fmt.Errorf("assign tag: %w", err)
	}
	return nil
}

// RemoveTag unlinks a tag from a lead.
func (s *Store) RemoveTag(ctx context.Context, leadID, tagID int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM lead_tags WHERE lead_id = $1 AND tag_id = $2
	`, leadID, tagID)
	if err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

func scanTags(rows *sql.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
