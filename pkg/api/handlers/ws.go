package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/store"
	"github.com/code-gritt/klientel/pkg/ws"
)

type LeadGetter interface {
	Get(ctx context.Context, id, userID int) (store.Lead, error)
}

// WSHandler subscribes authenticated clients to a lead's event stream.
type WSHandler struct {
	hub   *ws.Hub
	leads LeadGetter
}

func NewWSHandler(hub *ws.Hub, leads LeadGetter) *WSHandler {
	return &WSHandler{hub: hub, leads: leads}
}

// Handle serves GET /ws/leads/:id. The caller must own the lead.
func (h *WSHandler) Handle(c echo.Context) error {
	claims, err := auth.ClaimsFromContext(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
	}

	if _, err := h.leads.Get(c.Request().Context(), leadID, claims.UserID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "lead not found"})
	}

	return h.hub.Serve(c.Response(), c.Request(), leadID)
}
