package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AppendActivity appends an immutable activity record to the user's log.
func (s *Store) AppendActivity(ctx context.Context, userID int, action string) (Activity, error) {
	var a Activity
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO activities (user_id, action)
		VALUES ($1, $2)
		RETURNING id, user_id, action, created_at
	`, userID, action).Scan(&a.ID, &a.UserID, &a.Action, &a.CreatedAt)
	if err != nil {
		return Activity{}, fmt.Errorf("append activity: %w", err)
	}
	return a, nil
}

// ListRecentActivities returns the user's newest activity records first,
// capped at limit. This is the dashboard feed ordering.
func (s *Store) ListRecentActivities(ctx context.Context, userID, limit int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, created_at
		FROM activities WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ListActivitiesAsc returns the user's full activity log ascending by time.
// The analytics engine's forward-scan pairing depends on this order.
func (s *Store) ListActivitiesAsc(ctx context.Context, userID int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, created_at
		FROM activities WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
