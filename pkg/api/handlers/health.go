package handlers

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Handle(c echo.Context) error {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(c.Request().Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]string{"status": status})
}
