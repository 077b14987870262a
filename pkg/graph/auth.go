package graph

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/code-gritt/klientel/pkg/auth"
)

type credentialsInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

func (r *Resolver) registerField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(authPayloadType),
		Args: graphql.FieldConfigArgument{
			"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := credentialsInput{
				Email:    p.Args["email"].(string),
				Password: p.Args["password"].(string),
			}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}

			user, token, err := r.Users.Register(p.Context, in.Email, in.Password)
			if err != nil {
				return nil, err
			}
			return authPayload{User: toUserDTO(user), AccessToken: token}, nil
		},
	}
}

func (r *Resolver) loginField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(authPayloadType),
		Args: graphql.FieldConfigArgument{
			"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			user, token, err := r.Users.Login(p.Context,
				p.Args["email"].(string), p.Args["password"].(string))
			if err != nil {
				return nil, err
			}
			return authPayload{User: toUserDTO(user), AccessToken: token}, nil
		},
	}
}

func (r *Resolver) logoutField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(successPayloadType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			token, err := auth.TokenFromContext(p.Context)
			if err != nil {
				return nil, err
			}

			// Blacklist only for as long as the token would otherwise
			// stay valid.
			if claims.ExpiresAt != nil {
				if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
					if err := r.Blacklist.Add(p.Context, token, remaining); err != nil {
						return nil, fmt.Errorf("revoke token: %w", err)
					}
				}
			}

			r.Log.Info("user logged out", "user_id", claims.UserID)
			return map[string]any{"success": true}, nil
		},
	}
}

func (r *Resolver) meField() *graphql.Field {
	return &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			user, err := r.Users.Me(p.Context, claims.UserID)
			if err != nil {
				return nil, err
			}
			return toUserDTO(user), nil
		},
	}
}
