package graph

import (
	"encoding/base64"

	"github.com/graphql-go/graphql"
)

var chatbotInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ChatbotInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"query": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var exportInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ExportInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"format": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

type emailInput struct {
	Subject string `validate:"required,max=255"`
	Body    string `validate:"required,max=20000"`
}

func (r *Resolver) sendEmailField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(successPayloadType),
		Args: graphql.FieldConfigArgument{
			"leadId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"subject": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"body":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in := emailInput{
				Subject: p.Args["subject"].(string),
				Body:    p.Args["body"].(string),
			}
			if err := r.Validator.Struct(in); err != nil {
				return nil, err
			}
			if err := r.Outreach.Send(p.Context, p.Args["leadId"].(int), claims.UserID, in.Subject, in.Body); err != nil {
				return nil, err
			}
			return successPayload{Success: true}, nil
		},
	}
}

func (r *Resolver) chatbotField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(chatbotPayloadType),
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(chatbotInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in, _ := p.Args["input"].(map[string]any)
			query, _ := in["query"].(string)

			answer, err := r.Chatbot.Ask(p.Context, claims.UserID, query)
			if err != nil {
				return nil, err
			}
			return chatbotPayload{Response: answer}, nil
		},
	}
}

func (r *Resolver) exportReportField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(reportPayloadType),
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(exportInputType)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			in, _ := p.Args["input"].(map[string]any)
			format, _ := in["format"].(string)

			result, err := r.Export.Export(p.Context, claims.UserID, format)
			if err != nil {
				return nil, err
			}
			encoded := base64.StdEncoding.EncodeToString(result.Data)
			return map[string]any{"report": toReportDTO(result, encoded)}, nil
		},
	}
}

func (r *Resolver) pipelineMetricsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(pipelineMetricType)),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			claims, err := r.requireUser(p)
			if err != nil {
				return nil, err
			}
			return r.Analytics.PipelineMetrics(p.Context, claims.UserID)
		},
	}
}
