package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

// InviteTTL is how long a pending invite stays acceptable.
const InviteTTL = 7 * 24 * time.Hour

var (
	ErrNotTeamMember = fmt.Errorf("not a member of this team")
	ErrInviteExpired = fmt.Errorf("invite expired or already accepted")
	ErrUnknownRole   = fmt.Errorf("unknown member role")
)

// memberRoles are the roles an invite may grant.
var memberRoles = map[string]bool{
	"member": true,
	"admin":  true,
	"viewer": true,
}

type Store interface {
	CreateTeam(ctx context.Context, ownerID int, name string) (store.Team, error)
	ListTeamsByUser(ctx context.Context, userID int) ([]store.Team, error)
	GetTeam(ctx context.Context, id int) (store.Team, error)
	ListTeamMembers(ctx context.Context, teamID int) ([]store.TeamMember, error)
	CreateInvite(ctx context.Context, inv store.TeamInvite) (store.TeamInvite, error)
	AcceptInvite(ctx context.Context, inviteID string, userID int) (store.TeamMember, error)
	DeleteExpiredInvites(ctx context.Context) (int64, error)
	IsTeamMember(ctx context.Context, teamID, userID int) (bool, error)
}

type InviteMailer interface {
	SendTeamInvite(toEmail, teamName, inviteURL string) error
}

// Service manages teams, membership and the invite lifecycle.
type Service struct {
	store       Store
	mailer      InviteMailer
	frontendURL string
	log         logger.Logger
}

func NewService(s Store, mailer InviteMailer, frontendURL string, log logger.Logger) *Service {
	return &Service{store: s, mailer: mailer, frontendURL: frontendURL, log: log}
}

// Create makes a team with the caller as its owner and first member.
func (s *Service) Create(ctx context.Context, ownerID int, name string) (store.Team, error) {
	team, err := s.store.CreateTeam(ctx, ownerID, name)
	if err != nil {
		return store.Team{}, err
	}
	s.log.Info("team created", "team_id", team.ID, "owner_id", ownerID)
	return team, nil
}

// List returns the teams the user belongs to.
func (s *Service) List(ctx context.Context, userID int) ([]store.Team, error) {
	return s.store.ListTeamsByUser(ctx, userID)
}

// Members returns a team's memberships. Only existing members may look.
func (s *Service) Members(ctx context.Context, teamID, userID int) ([]store.TeamMember, error) {
	member, err := s.store.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotTeamMember
	}
	return s.store.ListTeamMembers(ctx, teamID)
}

// Invite creates a pending invite granting the given role and emails the
// join link. Only existing members may invite; an empty role defaults to
// member.
func (s *Service) Invite(ctx context.Context, teamID, inviterID int, email, role string) (store.TeamInvite, error) {
	if role == "" {
		role = "member"
	}
	if !memberRoles[role] {
		return store.TeamInvite{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	member, err := s.store.IsTeamMember(ctx, teamID, inviterID)
	if err != nil {
		return store.TeamInvite{}, err
	}
	if !member {
		return store.TeamInvite{}, ErrNotTeamMember
	}

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return store.TeamInvite{}, err
	}

	invite, err := s.store.CreateInvite(ctx, store.TeamInvite{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		ExpiresAt: time.Now().UTC().Add(InviteTTL),
	})
	if err != nil {
		return store.TeamInvite{}, fmt.Errorf("create invite: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/accept-invite/%s", s.frontendURL, invite.ID)
	if err := s.mailer.SendTeamInvite(email, team.Name, inviteURL); err != nil {
		// The invite stays valid; the link can be resent.
		s.log.Error("send invite email", "invite_id", invite.ID, "error", err)
	}

	s.log.Info("member invited", "team_id", teamID, "invited_by", inviterID, "role", role)
	return invite, nil
}

// Accept joins the caller to the invited team. The invite must be pending
// and unexpired.
func (s *Service) Accept(ctx context.Context, inviteID string, userID int) (store.TeamMember, error) {
	member, err := s.store.AcceptInvite(ctx, inviteID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.TeamMember{}, ErrInviteExpired
		}
		return store.TeamMember{}, err
	}
	s.log.Info("invite accepted", "invite_id", inviteID, "user_id", userID, "team_id", member.TeamID)
	return member, nil
}

// PurgeExpiredInvites drops invites past their expiry. Run from cron.
func (s *Service) PurgeExpiredInvites(ctx context.Context) error {
	n, err := s.store.DeleteExpiredInvites(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("expired invites purged", "count", n)
	}
	return nil
}
