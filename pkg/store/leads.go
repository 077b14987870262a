package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateLead inserts a lead owned by userID.
func (s *Store) CreateLead(ctx context.Context, userID int, name, email, status string) (Lead, error) {
	var l Lead
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO leads (user_id, name, email, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, email, status, created_at
	`, userID, name, email, status).Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt)
	if err != nil {
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return l, nil
}

// GetLead fetches a lead, scoped to its owner. Returns ErrNotFound when the
// lead does not exist or belongs to another user.
func (s *Store) GetLead(ctx context.Context, id, userID int) (Lead, error) {
	var l Lead
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, email, status, created_at
		FROM leads WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("lookup lead: %w", err)
	}
	return l, nil
}

// ListLeadsByUser returns the owner's current lead snapshot, oldest first.
func (s *Store) ListLeadsByUser(ctx context.Context, userID int) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, email, status, created_at
		FROM leads WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// UpdateLead updates a lead's name, email and status, scoped to its owner.
func (s *Store) UpdateLead(ctx context.Context, id, userID int, name, email, status string) (Lead, error) {
	var l Lead
	err := s.db.QueryRowContext(ctx, `
		UPDATE leads SET name = $3, email = $4, status = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, email, status, created_at
	`, id, userID, name, email, status).Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return l, nil
}

// UpdateLeadStatus moves a lead to a new pipeline stage.
func (s *Store) UpdateLeadStatus(ctx context.Context, id, userID int, status string) (Lead, error) {
	var l Lead
	err := s.db.QueryRowContext(ctx, `
		UPDATE leads SET status = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, email, status, created_at
	`, id, userID, status).Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	return l, nil
}

// DeleteLead removes a lead and returns its last state. Notes, comments and
// tag assignments cascade; transition history is kept.
func (s *Store) DeleteLead(ctx context.Context, id, userID int) (Lead, error) {
	var l Lead
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM leads WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, email, status, created_at
	`, id, userID).Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("delete lead: %w", err)
	}
	return l, nil
}

// CreateTransition appends a structured stage-transition record.
func (s *Store) CreateTransition(ctx context.Context, t Transition) (Transition, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO lead_transitions (lead_id, user_id, lead_name, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, occurred_at
	`, t.LeadID, t.UserID, t.LeadName, nullableString(t.FromStatus), nullableString(t.ToStatus)).
		Scan(&t.ID, &t.OccurredAt)
	if err != nil {
		return Transition{}, fmt.Errorf("insert transition: %w", err)
	}
	return t, nil
}

// ListTransitionsByUser returns all of the owner's stage transitions,
// ascending by occurrence time. The analytics engine depends on this order.
func (s *Store) ListTransitionsByUser(ctx context.Context, userID int) ([]Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, user_id, lead_name, from_status, to_status, occurred_at
		FROM lead_transitions WHERE user_id = $1
		ORDER BY occurred_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var transitions []Transition
	for rows.Next() {
		var t Transition
		var from, to sql.NullString
		if err := rows.Scan(&t.ID, &t.LeadID, &t.UserID, &t.LeadName, &from, &to, &t.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.FromStatus = from.String
		t.ToStatus = to.String
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// CountLeadsByStatus returns lead counts per status across all users.
func (s *Store) CountLeadsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM leads GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan lead count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
