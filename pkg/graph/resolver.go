package graph

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/graphql-go/graphql"

	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/chatbot"
	"github.com/code-gritt/klientel/pkg/comments"
	"github.com/code-gritt/klientel/pkg/export"
	"github.com/code-gritt/klientel/pkg/leads"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/notes"
	"github.com/code-gritt/klientel/pkg/outreach"
	"github.com/code-gritt/klientel/pkg/store"
	"github.com/code-gritt/klientel/pkg/tags"
	"github.com/code-gritt/klientel/pkg/teams"
	"github.com/code-gritt/klientel/pkg/users"
)

// ActivityReader is the slice of the store the resolver reads directly.
type ActivityReader interface {
	ListRecentActivities(ctx context.Context, userID, limit int) ([]store.Activity, error)
}

// Resolver holds the service dependencies behind the GraphQL schema.
type Resolver struct {
	Users      *users.Service
	Leads      *leads.Service
	Tags       *tags.Service
	Notes      *notes.Service
	Teams      *teams.Service
	Comments   *comments.Service
	Analytics  *analytics.Service
	Outreach   *outreach.Service
	Chatbot    *chatbot.Service
	Export     *export.Service
	Activities ActivityReader
	Blacklist  *auth.TokenBlacklist

	Validator *validator.Validate
	Log       logger.Logger
}

// requireUser pulls the authenticated claims out of the request context.
func (r *Resolver) requireUser(p graphql.ResolveParams) (*auth.Claims, error) {
	return auth.ClaimsFromContext(p.Context)
}
