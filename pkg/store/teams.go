package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateTeam inserts a team and makes the creator an owner member.
func (s *Store) CreateTeam(ctx context.Context, ownerID int, name string) (Team, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Team{}, fmt.Errorf("begin create team: %w", err)
	}
	defer tx.Rollback()

	var t Team
	err = tx.QueryRowContext(ctx, `
		INSERT INTO teams (owner_id, name)
		VALUES ($1, $2)
		RETURNING id, owner_id, name, created_at
	`, ownerID, name).Scan(&t.ID, &t.OwnerID, &t.Name, &t.CreatedAt)
	if err != nil {
		return Team{}, fmt.Errorf("insert team: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES ($1, $2, 'owner', NOW())
	`, t.ID, ownerID)
	if err != nil {
		return Team{}, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Team{}, fmt.Errorf("commit create team: %w", err)
	}
	return t, nil
}

// ListTeamsByUser returns teams the user belongs to (including owned ones).
func (s *Store) ListTeamsByUser(ctx context.Context, userID int) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT t.id, t.owner_id, t.name, t.created_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at ASC, t.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetTeam fetches a team by id.
func (s *Store) GetTeam(ctx context.Context, id int) (Team, error) {
	var t Team
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, created_at FROM teams WHERE id = $1
	`, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, ErrNotFound
	}
	if err != nil {
		return Team{}, fmt.Errorf("lookup team: %w", err)
	}
	return t, nil
}

// CreateInvite records a pending team invitation.
func (s *Store) CreateInvite(ctx context.Context, inv TeamInvite) (TeamInvite, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO team_invites (id, team_id, email, role, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, inv.ID, inv.TeamID, inv.Email, inv.Role, inv.ExpiresAt).Scan(&inv.CreatedAt)
	if err != nil {
		return TeamInvite{}, fmt.Errorf("insert invite: %w", err)
	}
	return inv, nil
}

// ListTeamMembers returns a team's memberships, owner first.
func (s *Store) ListTeamMembers(ctx context.Context, teamID int) ([]TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, user_id, role, invited_at, joined_at
		FROM team_members WHERE team_id = $1
		ORDER BY invited_at, id
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var out []TeamMember
	for rows.Next() {
		var m TeamMember
		var joinedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.InvitedAt, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		if joinedAt.Valid {
			m.JoinedAt = &joinedAt.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AcceptInvite marks an invitation accepted and creates the membership.
func (s *Store) AcceptInvite(ctx context.Context, inviteID string, userID int) (TeamMember, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TeamMember{}, fmt.Errorf("begin accept invite: %w", err)
	}
	defer tx.Rollback()

	var teamID int
	var role string
	var invitedAt time.Time
	err = tx.QueryRowContext(ctx, `
		UPDATE team_invites SET accepted_at = NOW()
		WHERE id = $1 AND accepted_at IS NULL AND expires_at > NOW()
		RETURNING team_id, role, created_at
	`, inviteID).Scan(&teamID, &role, &invitedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return TeamMember{}, ErrNotFound
	}
	if err != nil {
		return TeamMember{}, fmt.Errorf("accept invite: %w", err)
	}

	var m TeamMember
	var joinedAt sql.NullTime
	err = tx.QueryRowContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, invited_at, joined_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (team_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, team_id, user_id, role, invited_at, joined_at
	`, teamID, userID, role, invitedAt).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.InvitedAt, &joinedAt)
	if err != nil {
		return TeamMember{}, fmt.Errorf("insert membership: %w", err)
	}
	if joinedAt.Valid {
		m.JoinedAt = &joinedAt.Time
	}

	if err := tx.Commit(); err != nil {
		return TeamMember{}, fmt.Errorf("commit accept invite: %w", err)
	}
	return m, nil
}

// DeleteExpiredInvites purges unaccepted invitations past their expiry.
func (s *Store) DeleteExpiredInvites(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM team_invites WHERE accepted_at IS NULL AND expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("delete expired invites: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// IsTeamMember reports whether the user belongs to the team.
func (s *Store) IsTeamMember(ctx context.Context, teamID, userID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}
