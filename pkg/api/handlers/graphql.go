package handlers

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"github.com/code-gritt/klientel/pkg/logger"
)

// graphqlRequest is the standard POST body shape.
type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// GraphQLHandler executes queries against the schema.
type GraphQLHandler struct {
	schema graphql.Schema
	log    logger.Logger
}

func NewGraphQLHandler(schema graphql.Schema, log logger.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, log: log}
}

// Handle serves POST /graphql. The request context carries the caller's
// claims when the JWT middleware found a valid token.
func (h *GraphQLHandler) Handle(c echo.Context) error {
	var req graphqlRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing query"})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request().Context(),
	})

	if len(result.Errors) > 0 {
		h.log.Debug("graphql errors", "count", len(result.Errors), "first", result.Errors[0].Message)
	}
	return c.JSON(http.StatusOK, result)
}
