package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/center-roster/internal/application"
	"github.com/example/center-roster/internal/scheduler"
	"github.com/example/center-roster/internal/validate"
)

var errInvalidSessionID = errors.New("a session id is required")

type sessionService interface {
	CreateSession(ctx context.Context, input application.SessionInput) (application.Session, error)
	GetSession(ctx context.Context, id string) (application.Session, error)
	UpdateSession(ctx context.Context, id string, input application.SessionInput) (application.Session, error)
	MoveSession(ctx context.Context, id string, newSeat int, newStart, newEnd string) (application.Session, error)
	SetStatus(ctx context.Context, id string, status scheduler.Status) (application.Session, error)
	CancelSession(ctx context.Context, id string) (application.Session, error)
	ListSessions(ctx context.Context, filter application.SessionListFilter) ([]application.Session, error)
	AvailableSeats(ctx context.Context, sessionType scheduler.SessionType, date, start, end, excludeID string) ([]int, error)
	StartTimeOptions() []string
	EndTimeOptions(start string) []string
}

type SessionHandler struct {
	service   sessionService
	validator *validate.Validator
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service sessionService, validator *validate.Validator, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	if validator == nil {
		validator = validate.New()
	}
	return &SessionHandler{service: service, validator: validator, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

type sessionRequest struct {
	Type       string `json:"type" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	StartTime  string `json:"start_time" validate:"required,clock"`
	EndTime    string `json:"end_time" validate:"required,clock"`
	Seat       int    `json:"seat" validate:"gte=0"`
	StudentID  string `json:"student_id"`
	ClientName string `json:"client_name"`
	TrainerID  string `json:"trainer_id" validate:"required"`
}

func (req sessionRequest) toInput() application.SessionInput {
	return application.SessionInput{
		Type:       scheduler.SessionType(req.Type),
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Seat:       req.Seat,
		StudentID:  req.StudentID,
		ClientName: req.ClientName,
		TrainerID:  req.TrainerID,
	}
}

type moveRequest struct {
	Seat      int    `json:"seat" validate:"required,gte=1"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type sessionDTO struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Seat       int    `json:"seat"`
	StudentID  string `json:"student_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	TrainerID  string `json:"trainer_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type sessionListResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:         session.ID,
		Type:       string(session.Type),
		Date:       session.Date,
		StartTime:  session.StartTime,
		EndTime:    session.EndTime,
		Seat:       session.Seat,
		StudentID:  session.StudentID,
		ClientName: session.ClientName,
		TrainerID:  session.TrainerID,
		Status:     string(session.Status),
		CreatedAt:  session.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  session.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if fieldErrors := h.validator.Struct(req); fieldErrors != nil {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fieldErrors,
		})
		return
	}

	logger := h.log(r.Context(), "Create", "type", req.Type, "date", req.Date)

	session, err := h.service.CreateSession(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "session creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", session.ID).InfoContext(r.Context(), "session created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	session, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "session_id", id).ErrorContext(r.Context(), "session lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "session_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if fieldErrors := h.validator.Struct(req); fieldErrors != nil {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fieldErrors,
		})
		return
	}

	logger := h.log(r.Context(), "Update", "session_id", id)

	session, err := h.service.UpdateSession(r.Context(), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "session update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

// Delete cancels the session. The record stays in storage so historical
// listings keep working.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Delete", "session_id", id)

	if _, err := h.service.CancelSession(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "session cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Move", "session_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode move request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if fieldErrors := h.validator.Struct(req); fieldErrors != nil {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fieldErrors,
		})
		return
	}

	logger := h.log(r.Context(), "Move", "session_id", id, "seat", req.Seat)

	session, err := h.service.MoveSession(r.Context(), id, req.Seat, req.StartTime, req.EndTime)
	if err != nil {
		logger.ErrorContext(r.Context(), "session move failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session moved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetStatus", "session_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if fieldErrors := h.validator.Struct(req); fieldErrors != nil {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fieldErrors,
		})
		return
	}

	logger := h.log(r.Context(), "SetStatus", "session_id", id, "status", req.Status)

	session, err := h.service.SetStatus(r.Context(), id, scheduler.Status(req.Status))
	if err != nil {
		logger.ErrorContext(r.Context(), "status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.SessionListFilter{
		Date:             query.Get("date"),
		DateFrom:         query.Get("from"),
		DateTo:           query.Get("to"),
		Type:             scheduler.SessionType(query.Get("type")),
		TrainerID:        query.Get("trainer_id"),
		StudentID:        query.Get("student_id"),
		Status:           scheduler.Status(query.Get("status")),
		IncludeCancelled: query.Get("include_cancelled") == "true",
	}

	sessions, err := h.service.ListSessions(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "session listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		dtos = append(dtos, toSessionDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionListResponse{Sessions: dtos})
}

type availabilityResponse struct {
	Seats []int `json:"seats"`
}

// Availability reports the free seats for a proposed type/date/time window.
func (h *SessionHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	sessionType := scheduler.SessionType(query.Get("type"))
	date := query.Get("date")
	start := query.Get("start")
	end := query.Get("end")
	excludeID := query.Get("exclude")

	if !sessionType.Valid() || date == "" || start == "" || end == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest,
			errors.New("type, date, start and end query parameters are required"))
		return
	}

	seats, err := h.service.AvailableSeats(r.Context(), sessionType, date, start, end, excludeID)
	if err != nil {
		h.log(r.Context(), "Availability").ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if seats == nil {
		seats = []int{}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{Seats: seats})
}

type timeOptionsResponse struct {
	Starts []string `json:"starts"`
	Ends   []string `json:"ends,omitempty"`
}

// TimeOptions lists the selectable start times and, when a start query
// parameter is supplied, the end times reachable from it. Clients populate
// their time pickers from this endpoint so the choices match what session
// validation accepts.
func (h *SessionHandler) TimeOptions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := timeOptionsResponse{Starts: h.service.StartTimeOptions()}
	if start := r.URL.Query().Get("start"); start != "" {
		if _, err := time.Parse("15:04", start); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest,
				errors.New("start must be an HH:MM clock value"))
			return
		}
		resp.Ends = h.service.EndTimeOptions(start)
	}
	if resp.Starts == nil {
		resp.Starts = []string{}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}
