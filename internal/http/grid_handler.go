package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/center-roster/internal/application"
	"github.com/example/center-roster/internal/grid"
	"github.com/example/center-roster/internal/scheduler"
)

var errInvalidGridDate = errors.New("a date formatted YYYY-MM-DD is required")

// GridHandler renders one day's sessions as positioned blocks for the daily
// grid. Each request builds a fresh layout from storage; drag interaction
// state lives in the client, which commits moves via the session move
// endpoint.
type GridHandler struct {
	service   sessionService
	geometry  grid.Geometry
	seats     scheduler.SeatConfig
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewGridHandler(service sessionService, geometry grid.Geometry, seats scheduler.SeatConfig, now func() time.Time, logger *slog.Logger) *GridHandler {
	base := defaultLogger(logger)
	if geometry.RowHeight <= 0 {
		geometry = grid.DefaultGeometry()
	}
	if seats == nil {
		seats = scheduler.DefaultSeatConfig()
	}
	if now == nil {
		now = time.Now
	}
	return &GridHandler{
		service:   service,
		geometry:  geometry,
		seats:     seats,
		now:       now,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *GridHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GridHandler", operation, attrs...)
}

type gridBlockDTO struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Lane      int    `json:"lane"`
	Top       int    `json:"top"`
	Left      int    `json:"left"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	ReadOnly  bool   `json:"read_only"`
}

type gridResponse struct {
	Date   string         `json:"date"`
	Blocks []gridBlockDTO `json:"blocks"`
}

// Day returns the positioned blocks for the requested date. Cancelled
// sessions are omitted.
func (h *GridHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(date) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGridDate)
		return
	}
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGridDate)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), application.SessionListFilter{Date: date, IncludeCancelled: true})
	if err != nil {
		h.log(r.Context(), "Day", "date", date).ErrorContext(r.Context(), "grid lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	engine := grid.NewEngine(h.geometry, h.seats, h.now, grid.Callbacks{})
	engine.SetDay(date, gridSessions(sessions))

	typeByID := make(map[string]string, len(sessions))
	for _, session := range sessions {
		typeByID[session.ID] = string(session.Type)
	}

	blocks := engine.Blocks()
	dtos := make([]gridBlockDTO, 0, len(blocks))
	for _, block := range blocks {
		dtos = append(dtos, gridBlockDTO{
			SessionID: block.SessionID,
			Type:      typeByID[block.SessionID],
			Lane:      block.Lane,
			Top:       block.Top,
			Left:      block.Left,
			Height:    block.Height,
			Width:     block.Width,
			ReadOnly:  block.ReadOnly,
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, gridResponse{Date: date, Blocks: dtos})
}

func gridSessions(sessions []application.Session) []scheduler.Session {
	out := make([]scheduler.Session, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, scheduler.Session{
			ID:         session.ID,
			Type:       session.Type,
			Date:       session.Date,
			StartTime:  session.StartTime,
			EndTime:    session.EndTime,
			Seat:       session.Seat,
			StudentID:  session.StudentID,
			ClientName: session.ClientName,
			TrainerID:  session.TrainerID,
			Status:     session.Status,
		})
	}
	return out
}
