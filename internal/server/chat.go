package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/store"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/triage"
)

// ChatHandler exposes the triage pipeline over HTTP.
type ChatHandler struct {
	Pipeline *triage.Pipeline
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req triage.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	res, err := h.Pipeline.Run(c.Request().Context(), req)
	if err != nil {
		var blocked *triage.BlockedError
		if errors.As(err, &blocked) {
			// Policy rejections carry the user-facing warning text; the
			// global error handler maps them to 400.
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// DecisionsHandler serves the persisted audit trail, newest first.
type DecisionsHandler struct {
	Store *store.Store
}

func (h *DecisionsHandler) Register(g *echo.Group) {
	g.GET("/decisions", h.list)
}

func (h *DecisionsHandler) list(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}
	recs, err := h.Store.ListDecisions(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"decisions": recs, "count": len(recs)})
}
