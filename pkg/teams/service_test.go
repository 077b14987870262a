package teams

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/store"
)

type fakeStore struct {
	nextID  int
	teams   map[int]store.Team
	members map[int][]store.TeamMember
	invites map[string]store.TeamInvite
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:  1,
		teams:   map[int]store.Team{},
		members: map[int][]store.TeamMember{},
		invites: map[string]store.TeamInvite{},
	}
}

func (f *fakeStore) CreateTeam(_ context.Context, ownerID int, name string) (store.Team, error) {
	team := store.Team{ID: f.nextID, OwnerID: ownerID, Name: name}
	f.teams[team.ID] = team
	now := time.Now()
	f.members[team.ID] = []store.TeamMember{
		{ID: f.nextID, TeamID: team.ID, UserID: ownerID, Role: "owner", JoinedAt: &now},
	}
	f.nextID++
	return team, nil
}

func (f *fakeStore) ListTeamsByUser(_ context.Context, userID int) ([]store.Team, error) {
	var out []store.Team
	for id, ms := range f.members {
		for _, m := range ms {
			if m.UserID == userID {
				out = append(out, f.teams[id])
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetTeam(_ context.Context, id int) (store.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return store.Team{}, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) CreateInvite(_ context.Context, inv store.TeamInvite) (store.TeamInvite, error) {
	f.invites[inv.ID] = inv
	return inv, nil
}

func (f *fakeStore) ListTeamMembers(_ context.Context, teamID int) ([]store.TeamMember, error) {
	return f.members[teamID], nil
}

func (f *fakeStore) AcceptInvite(_ context.Context, inviteID string, userID int) (store.TeamMember, error) {
	inv, ok := f.invites[inviteID]
	if !ok || inv.AcceptedAt != nil || time.Now().After(inv.ExpiresAt) {
		return store.TeamMember{}, store.ErrNotFound
	}
	now := time.Now()
	inv.AcceptedAt = &now
	f.invites[inviteID] = inv

	m := store.TeamMember{ID: f.nextID, TeamID: inv.TeamID, UserID: userID, Role: inv.Role, JoinedAt: &now}
	f.members[inv.TeamID] = append(f.members[inv.TeamID], m)
	f.nextID++
	return m, nil
}

func (f *fakeStore) DeleteExpiredInvites(_ context.Context) (int64, error) {
	var n int64
	for id, inv := range f.invites {
		if inv.AcceptedAt == nil && time.Now().After(inv.ExpiresAt) {
			delete(f.invites, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) IsTeamMember(_ context.Context, teamID, userID int) (bool, error) {
	for _, m := range f.members[teamID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeMailer struct {
	sent []string // invite URLs
}

func (fm *fakeMailer) SendTeamInvite(_, _, inviteURL string) error {
	fm.sent = append(fm.sent, inviteURL)
	return nil
}

func newTestService(fs *fakeStore, fm *fakeMailer) *Service {
	return NewService(fs, fm, "https://app.example.com", logger.Default())
}

func TestCreateAddsOwnerAsMember(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs, &fakeMailer{})

	team, err := svc.Create(ctx, 1, "Sales")
	require.NoError(t, err)

	member, err := fs.IsTeamMember(ctx, team.ID, 1)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("members can invite and the email carries the join link", func(t *testing.T) {
		fs := newFakeStore()
		fm := &fakeMailer{}
		svc := newTestService(fs, fm)
		team, err := svc.Create(ctx, 1, "Sales")
		require.NoError(t, err)

		invite, err := svc.Invite(ctx, team.ID, 1, "new@member.com", "")
		require.NoError(t, err)
		assert.NotEmpty(t, invite.ID)
		assert.Equal(t, "member", invite.Role)
		assert.True(t, invite.ExpiresAt.After(time.Now()))

		require.Len(t, fm.sent, 1)
		assert.Equal(t, "https://app.example.com/accept-invite/"+invite.ID, fm.sent[0])
	})

	t.Run("invite carries the requested role", func(t *testing.T) {
		fs := newFakeStore()
		svc := newTestService(fs, &fakeMailer{})
		team, err := svc.Create(ctx, 1, "Sales")
		require.NoError(t, err)

		invite, err := svc.Invite(ctx, team.ID, 1, "new@member.com", "admin")
		require.NoError(t, err)
		assert.Equal(t, "admin", invite.Role)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		fs := newFakeStore()
		svc := newTestService(fs, &fakeMailer{})
		team, err := svc.Create(ctx, 1, "Sales")
		require.NoError(t, err)

		_, err = svc.Invite(ctx, team.ID, 1, "new@member.com", "superuser")
		assert.ErrorIs(t, err, ErrUnknownRole)
		assert.Empty(t, fs.invites)
	})

	t.Run("non-members cannot invite", func(t *testing.T) {
		fs := newFakeStore()
		svc := newTestService(fs, &fakeMailer{})
		team, err := svc.Create(ctx, 1, "Sales")
		require.NoError(t, err)

		_, err = svc.Invite(ctx, team.ID, 99, "x@y.com", "")
		assert.ErrorIs(t, err, ErrNotTeamMember)
	})
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs, &fakeMailer{})
	team, err := svc.Create(ctx, 1, "Sales")
	require.NoError(t, err)
	invite, err := svc.Invite(ctx, team.ID, 1, "new@member.com", "viewer")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, invite.ID, 2)
	require.NoError(t, err)

	t.Run("members see the roster", func(t *testing.T) {
		members, err := svc.Members(ctx, team.ID, 1)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "owner", members[0].Role)
		assert.Equal(t, "viewer", members[1].Role)
	})

	t.Run("outsiders are refused", func(t *testing.T) {
		_, err := svc.Members(ctx, team.ID, 99)
		assert.ErrorIs(t, err, ErrNotTeamMember)
	})
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs, &fakeMailer{})
	team, err := svc.Create(ctx, 1, "Sales")
	require.NoError(t, err)
	invite, err := svc.Invite(ctx, team.ID, 1, "new@member.com", "")
	require.NoError(t, err)

	t.Run("joins the team", func(t *testing.T) {
		member, err := svc.Accept(ctx, invite.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, team.ID, member.TeamID)
		assert.Equal(t, 2, member.UserID)
	})

	t.Run("second accept fails", func(t *testing.T) {
		_, err := svc.Accept(ctx, invite.ID, 3)
		assert.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("unknown invite fails", func(t *testing.T) {
		_, err := svc.Accept(ctx, "nope", 2)
		assert.ErrorIs(t, err, ErrInviteExpired)
	})
}

func TestPurgeExpiredInvites(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs, &fakeMailer{})
	team, err := svc.Create(ctx, 1, "Sales")
	require.NoError(t, err)

	fs.invites["old"] = store.TeamInvite{
		ID: "old", TeamID: team.ID, Email: "x@y.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	require.NoError(t, svc.PurgeExpiredInvites(ctx))
	_, ok := fs.invites["old"]
	assert.False(t, ok)
}
