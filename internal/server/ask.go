package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shelfside/shelfside/internal/orchestrator"
)

// AnswerProvider is the orchestrator operation the front door depends on.
// Implemented by *orchestrator.Orchestrator.
type AnswerProvider interface {
	Answer(ctx context.Context, req orchestrator.Request) orchestrator.Result
}

// AskHandler exposes the question pipeline over HTTP. The handler only
// validates input and maps the result; the orchestrator itself never
// surfaces an error to the caller, so the only non-200 here is bad input.
type AskHandler struct {
	Orch AnswerProvider
}

func (h *AskHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
}

func (h *AskHandler) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	// Prefer the authenticated subject over a caller-supplied user id
	if uid, ok := c.Get("user_id").(string); ok && uid != "" {
		req.UserID = uid
	}

	res := h.Orch.Answer(c.Request().Context(), orchestrator.Request{
		Query:          req.Query,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
	})
	return c.JSON(http.StatusOK, AskResponse{
		ResponseText:       res.Text,
		ThreadID:           res.ThreadID,
		MatchingGamesCount: res.MatchedGames,
	})
}
