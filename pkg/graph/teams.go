package graph

import (
	"github.com/graphql-go/graphql"
)

type teamNameInput struct {
	Name string `validate:"required,max=120"`
}

type inviteInput struct {
	Email string `validate:"required,email"`
	Role  string `validate:"omitempty,oneof=member admin viewer"`
}

func (r *Resolver) teamsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(teamType)),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Teams.List(p.Context, claims.UserID)
			if err != nil {
				return nil, err
			}
			out := make([]teamDTO, len(rows))
			for i, t := range rows {
				out[i] = teamDTO{ID: t.ID, Name: t.Name, CreatedAt: ts(t.CreatedAt)}
			}
			return out, nil
		},
	}
}

func (r *Resolver) teamMembersField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(memberType)),
		Args: graphql.FieldConfigArgument{
			"teamId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Teams.Members(p.Context, p.Args["teamId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			out := make([]memberDTO, len(rows))
			for i, m := range rows {
				out[i] = toMemberDTO(m)
			}
			return out, nil
		},
	}
}

func (r *Resolver) createTeamField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(teamPayloadType),
		Args: graphql.FieldConfigArgument{
			"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := teamNameInput{Name: p.Args["name"].(string)}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			team, err := r.Teams.Create(p.Context, claims.UserID, in.Name)
			if err != nil {
				return nil, err
			}
			return map[string]any{"team": teamDTO{ID: team.ID, Name: team.Name, CreatedAt: ts(team.CreatedAt)}}, nil
		},
	}
}

func (r *Resolver) inviteMemberField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(invitePayloadType),
		Args: graphql.FieldConfigArgument{
			"teamId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"email":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"role":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "member"},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := inviteInput{Email: p.Args["email"].(string)}
			if role, ok := p.Args["role"].(string); ok {
				in.Role = role
			}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			invite, err := r.Teams.Invite(p.Context, p.Args["teamId"].(int), claims.UserID, in.Email, in.Role)
			if err != nil {
				return nil, err
			}
			return map[string]any{"invite": inviteDTO{
				ID: invite.ID, TeamID: invite.TeamID, Email: invite.Email,
				Role: invite.Role, ExpiresAt: ts(invite.ExpiresAt),
			}}, nil
		},
	}
}

func (r *Resolver) acceptInviteField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(memberPayloadType),
		Args: graphql.FieldConfigArgument{
			"inviteId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			member, err := r.Teams.Accept(p.Context, p.Args["inviteId"].(string), claims.UserID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"member": toMemberDTO(member)}, nil
		},
	}
}
