package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/verseroom/verseroom"
	"github.com/verseroom/verseroom/internal/domain"
	"github.com/verseroom/verseroom/internal/interface/rest/presenter"
	"github.com/verseroom/verseroom/internal/service"
	"github.com/verseroom/verseroom/internal/usecase"
)

type Handler struct {
	songs       *usecase.SongUsecase
	suggestions *usecase.SuggestionUsecase
	auth        *service.AuthService
	events      *service.EventService
}

func NewHandler(
	songs *usecase.SongUsecase,
	suggestions *usecase.SuggestionUsecase,
	auth *service.AuthService,
	events *service.EventService,
) *Handler {
	return &Handler{
		songs:       songs,
		suggestions: suggestions,
		auth:        auth,
		events:      events,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.POST("/api/v1/register", h.handleRegister)
	e.POST("/api/v1/songs", h.handleCreateSong)
	e.GET("/api/v1/songs/:id", h.handleGetSong)
	e.GET("/api/v1/songs/:id/text/:kind", h.handleGetText)
	e.PUT("/api/v1/songs/:id/text/:kind", h.handleEditText)
	e.GET("/api/v1/songs/:id/contributors/:kind", h.handleContributors)
	e.POST("/api/v1/songs/:id/suggestions/:kind", h.handleSubmitSuggestion)
	e.GET("/api/v1/suggestions", h.handleListSuggestions)
	e.POST("/api/v1/suggestions/:id/approve", h.handleApproveSuggestion)
	e.POST("/api/v1/suggestions/:id/reject", h.handleRejectSuggestion)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req verseroom.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.auth.Register(ctx, req.Handle, req.Role)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.Created(c, verseroom.RegisterResponse{
		UserID: user.ID,
		Handle: user.Handle,
		Token:  user.Token,
	})
}

func (h *Handler) handleCreateSong(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := requester(c); !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	var req verseroom.CreateSongRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	song, err := h.songs.Create(ctx, req.Title, req.Artist)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, song)
}

func (h *Handler) handleGetSong(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid song id")
	}

	song, err := h.songs.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, song)
}

func (h *Handler) handleGetText(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid song id")
	}
	kind, ok := domain.ParseTextKind(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown text kind")
	}

	song, err := h.songs.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	text := song.Text(kind)
	if text == nil {
		return presenter.NotFound(c, fmt.Sprintf("song has no %s text", kind))
	}
	return presenter.OK(c, echo.Map{
		"body":     *text,
		"revision": song.Revision(kind),
	})
}

func (h *Handler) handleEditText(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	if !user.CanEditDirectly() {
		return presenter.Forbidden(c, "direct edits require an editor role; submit a suggestion instead")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid song id")
	}
	kind, ok := domain.ParseTextKind(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown text kind")
	}

	var req verseroom.EditTextRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.songs.EditText(ctx, domain.EditEvent{
		SongID:   id,
		Kind:     kind,
		EditorID: user.ID,
		Body:     req.Body,
	})
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, verseroom.EditTextResponse{
		NoOp:         result.NoOp,
		Revision:     result.Revision,
		Contributors: contributorShares(result.Contributors),
	})
}

func (h *Handler) handleContributors(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid song id")
	}
	kind, ok := domain.ParseTextKind(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown text kind")
	}

	contributors, err := h.songs.Contributors(ctx, id, kind)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"contributors": contributorShares(contributors)})
}

func (h *Handler) handleSubmitSuggestion(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid song id")
	}
	kind, ok := domain.ParseTextKind(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown text kind")
	}

	var req verseroom.EditTextRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	suggestion, err := h.suggestions.Submit(ctx, id, kind, user.ID, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, suggestion)
}

func (h *Handler) handleListSuggestions(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	if !user.CanModerate() {
		return presenter.Forbidden(c, "moderator role required")
	}

	status := domain.SuggestionStatus(c.QueryParam("status"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	suggestions, err := h.suggestions.List(ctx, status, limit)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"suggestions": suggestions})
}

func (h *Handler) handleApproveSuggestion(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	if !user.CanModerate() {
		return presenter.Forbidden(c, "moderator role required")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid suggestion id")
	}

	suggestion, result, err := h.suggestions.Approve(ctx, id, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{
		"suggestion": suggestion,
		"edit": verseroom.EditTextResponse{
			NoOp:         result.NoOp,
			Revision:     result.Revision,
			Contributors: contributorShares(result.Contributors),
		},
	})
}

func (h *Handler) handleRejectSuggestion(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	if !user.CanModerate() {
		return presenter.Forbidden(c, "moderator role required")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid suggestion id")
	}

	suggestion, err := h.suggestions.Reject(ctx, id, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"suggestion": suggestion})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type    string  `json:"type"`
	SongIDs []int64 `json:"songIds"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []int64)
	defer close(input)
	output := make(chan verseroom.Event)
	defer close(output)

	go h.events.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.SongIDs
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %v", req.SongIDs),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}

// --- helpers ---

func requester(c echo.Context) (domain.User, bool) {
	user, ok := c.Request().Context().Value(domain.RequesterCtxKey).(domain.User)
	return user, ok
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func contributorShares(contributors []domain.Contributor) []verseroom.ContributorShare {
	shares := make([]verseroom.ContributorShare, 0, len(contributors))
	for _, contrib := range contributors {
		shares = append(shares, verseroom.ContributorShare{
			UserID:  contrib.UserID,
			Percent: contrib.Percent,
		})
	}
	return shares
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidEditor):
		return presenter.UnprocessableEntity(c, err)
	case errors.Is(err, domain.ErrConflict):
		return presenter.Conflict(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}
