package graph

import (
	"github.com/graphql-go/graphql"
)

var noteInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "NoteInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"content": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

type noteInput struct {
	Content string `validate:"required,max=10000"`
}

func (r *Resolver) notesField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(noteType)),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			rows, err := r.Notes.ListForLead(p.Context, p.Args["leadId"].(int), claims.UserID)
			if err != nil {
				return nil, err
			}
			return toNoteDTOs(rows), nil
		},
	}
}

func (r *Resolver) createNoteField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(notePayloadType),
		Args: graphql.FieldConfigArgument{
			"leadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"input":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(noteInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			inMap, _ := p.Args["input"].(map[string]any)
			content, _ := inMap["content"].(string)
			in := noteInput{Content: content}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			note, err := r.Notes.Create(p.Context, p.Args["leadId"].(int), claims.UserID, in.Content)
			if err != nil {
				return nil, err
			}
			return map[string]any{"note": noteDTO{
				ID: note.ID, LeadID: note.LeadID, Content: note.Content, CreatedAt: ts(note.CreatedAt),
			}}, nil
		},
	}
}

func (r *Resolver) deleteNoteField() *graphql.Field {
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
			if err := r.Notes.Delete(p.Context, p.Args["id"].(int), claims.UserID); err != nil {
				return nil, err
			}
			return successPayload{Success: true}, nil
		},
	}
}
