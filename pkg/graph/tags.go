package graph

import (
	"github.com/graphql-go/graphql"
)

type tagNameInput struct {
	Name string `validate:"required,max=64"`
}

func (r *Resolver) tagsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(tagType)),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Tags.List(p.Context, claims.UserID)
			if err != nil {
				return nil, err
			}
			return toTagDTOs(rows), nil
		},
	}
}

func (r *Resolver) leadTagsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(tagType)),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Tags.ListForLead(p.Context, p.Args["leadId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			return toTagDTOs(rows), nil
		},
	}
}

func (r *Resolver) createTagField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(tagPayloadType),
		Args: graphql.FieldConfigArgument{
			"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := tagNameInput{Name: p.Args["name"].(string)}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			tag, err := r.Tags.Create(p.Context, claims.UserID, in.Name)
			if err != nil {
				return nil, err
			}
			return map[string]any{"tag": tagDTO{ID: tag.ID, Name: tag.Name}}, nil
		},
	}
}

func (r *Resolver) deleteTagField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(successPayloadType),
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			if err := r.Tags.Delete(p.Context, p.Args["id"].(int), claims.UserID); err != nil {
				return nil, err
			}
			return successPayload{Success: true}, nil
		},
	}
}

func (r *Resolver) assignTagField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(leadPayloadType),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"tagId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			lead, err := r.Tags.Assign(p.Context, p.Args["leadId"].(int), p.Args["tagId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"lead": toLeadDTO(lead)}, nil
		},
	}
}

func (r *Resolver) removeTagField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(leadPayloadType),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"tagId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			lead, err := r.Tags.Remove(p.Context, p.Args["leadId"].(int), p.Args["tagId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"lead": toLeadDTO(lead)}, nil
		},
	}
}
