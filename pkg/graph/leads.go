package graph

import (
	"github.com/graphql-go/graphql"
)

var leadInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "LeadInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"status": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

type leadInput struct {
	Name   string `validate:"required,max=255"`
	Email  string `validate:"omitempty,email"`
	Status string
}

func leadInputFromArgs(args map[string]any) leadInput {
	in, _ := args["input"].(map[string]any)
	out := leadInput{}
	if v, ok := in["name"].(string); ok {
		out.Name = v
	}
	if v, ok := in["email"].(string); ok {
		out.Email = v
	}
	if v, ok := in["status"].(string); ok {
		out.Status = v
	}
	return out
}

func (r *Resolver) leadsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(leadType)),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Leads.List(p.Context, claims.UserID)
			if err != nil {
				return nil, err
			}
			return toLeadDTOs(rows), nil
		},
	}
}

func (r *Resolver) leadField() *graphql.Field {
	return &graphql.Field{
		Type: leadType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			lead, err := r.Leads.Get(p.Context, p.Args["id"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			return toLeadDTO(lead), nil
		},
	}
}

func (r *Resolver) createLeadField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(leadPayloadType),
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(leadInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := leadInputFromArgs(p.Args)
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			lead, err := r.Leads.Create(p.Context, claims.UserID, in.Name, in.Email, in.Status)
			if err != nil {
				return nil, err
			}
			return map[string]any{"lead": toLeadDTO(lead)}, nil
		},
	}
}

func (r *Resolver) updateLeadField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(leadPayloadType),
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(leadInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := leadInputFromArgs(p.Args)
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			lead, err := r.Leads.Update(p.Context, p.Args["id"].(int), claims.UserID, in.Name, in.Email, in.Status)
			if err != nil {
				return nil, err
			}
			return map[string]any{"lead": toLeadDTO(lead)}, nil
		},
	}
}

func (r *Resolver) updateLeadStatusField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(leadPayloadType),
		Args: graphql.FieldConfigArgument{
			"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			lead, err := r.Leads.UpdateStatus(p.Context,
				p.Args["id"].(int), claims.UserID, p.Args["status"].(string))
			if err != nil {
				return nil, err
			}
			return map[string]any{"lead": toLeadDTO(lead)}, nil
		},
	}
}

func (r *Resolver) deleteLeadField() *graphql.Field {
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
			if err := r.Leads.Delete(p.Context, p.Args["id"].(int), claims.UserID); err != nil {
				return nil, err
			}
			return successPayload{Success: true}, nil
		},
	}
}

func (r *Resolver) activitiesField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(activityType)),
		Args: graphql.FieldConfigArgument{
			"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			limit, _ := p.Args["limit"].(int)
			if limit <= 0 || limit > 100 {
				limit = 10
			}
			rows, err := r.Activities.ListRecentActivities(p.Context, claims.UserID, limit)
			if err != nil {
				return nil, err
			}
			out := make([]activityDTO, len(rows))
			for i, a := range rows {
				out[i] = activityDTO{ID: a.ID, Action: a.Action, CreatedAt: ts(a.CreatedAt)}
			}
			return out, nil
		},
	}
}
