package graph

import (
	"github.com/graphql-go/graphql"
)

type commentInput struct {
	Content string `validate:"required,max=5000"`
}

func (r *Resolver) commentsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(commentType)),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Comments.ListForLead(p.Context, p.Args["leadId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			out := make([]commentDTO, len(rows))
			for i, c := range rows {
				out[i] = commentDTO{
					ID: c.ID, LeadID: c.LeadID, UserID: c.UserID,
					Content: c.Content, CreatedAt: ts(c.CreatedAt),
				}
			}
			return out, nil
		},
	}
}

func (r *Resolver) addCommentField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(commentPayloadType),
		Args: graphql.FieldConfigArgument{
			"leadId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := commentInput{Content: p.Args["content"].(string)}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			comment, err := r.Comments.Add(p.Context, p.Args["leadId"].(int), claims.UserID, in.Content)
			if err != nil {
				return nil, err
			}
			return map[string]any{"comment": commentDTO{
				ID: comment.ID, LeadID: comment.LeadID, UserID: comment.UserID,
				Content: comment.Content, CreatedAt: ts(comment.CreatedAt),
			}}, nil
		},
	}
}
