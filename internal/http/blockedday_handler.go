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
	"github.com/example/center-roster/internal/blockeddays"
	"github.com/example/center-roster/internal/validate"
)

var errInvalidRuleID = errors.New("a blocked-day rule id is required")

type blockedDayService interface {
	CreateRule(ctx context.Context, input application.BlockedDayRuleInput) (application.BlockedDayRule, error)
	GetRule(ctx context.Context, id string) (application.BlockedDayRule, error)
	ListRules(ctx context.Context) ([]application.BlockedDayRule, error)
	DeleteRule(ctx context.Context, id string) error
	EffectiveBlocks(ctx context.Context, fromDate, toDate string) ([]blockeddays.EffectiveBlock, error)
}

type BlockedDayHandler struct {
	service   blockedDayService
	validator *validate.Validator
	responder responder
	logger    *slog.Logger
}

func NewBlockedDayHandler(service blockedDayService, validator *validate.Validator, logger *slog.Logger) *BlockedDayHandler {
	base := defaultLogger(logger)
	if validator == nil {
		validator = validate.New()
	}
	return &BlockedDayHandler{service: service, validator: validator, responder: newResponder(base), logger: base}
}

func (h *BlockedDayHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BlockedDayHandler", operation, attrs...)
}

type blockedDayRequest struct {
	StartDate     string `json:"start_date" validate:"omitempty,date"`
	EndDate       string `json:"end_date" validate:"omitempty,date"`
	StartTime     string `json:"start_time" validate:"omitempty,clock"`
	EndTime       string `json:"end_time" validate:"omitempty,clock"`
	Recurring     bool   `json:"recurring"`
	Nth           int    `json:"nth"`
	Weekday       int    `json:"weekday"`
	ExcludeMonths []int  `json:"exclude_months"`
	Reason        string `json:"reason"`
}

func (req blockedDayRequest) toInput() application.BlockedDayRuleInput {
	months := make([]time.Month, 0, len(req.ExcludeMonths))
	for _, month := range req.ExcludeMonths {
		months = append(months, time.Month(month))
	}
	return application.BlockedDayRuleInput{
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Recurring:     req.Recurring,
		Nth:           req.Nth,
		Weekday:       time.Weekday(req.Weekday),
		ExcludeMonths: months,
		Reason:        req.Reason,
	}
}

type blockedDayDTO struct {
	ID            string `json:"id"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
	Recurring     bool   `json:"recurring"`
	Nth           int    `json:"nth,omitempty"`
	Weekday       int    `json:"weekday,omitempty"`
	ExcludeMonths []int  `json:"exclude_months,omitempty"`
	Reason        string `json:"reason,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type blockedDayResponse struct {
	Rule blockedDayDTO `json:"rule"`
}

type blockedDayListResponse struct {
	Rules []blockedDayDTO `json:"rules"`
}

type effectiveBlockDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type effectiveBlockListResponse struct {
	Blocks []effectiveBlockDTO `json:"blocks"`
}

func toBlockedDayDTO(rule application.BlockedDayRule) blockedDayDTO {
	dto := blockedDayDTO{
		ID:        rule.ID,
		StartDate: rule.StartDate,
		EndDate:   rule.EndDate,
		StartTime: rule.StartTime,
		EndTime:   rule.EndTime,
		Reason:    rule.Reason,
		CreatedAt: rule.CreatedAt.Format(time.RFC3339),
	}
	if rule.Recurrence != nil {
		dto.Recurring = true
		dto.Nth = rule.Recurrence.Nth
		dto.Weekday = int(rule.Recurrence.Weekday)
		for _, month := range rule.Recurrence.ExcludeMonths {
			dto.ExcludeMonths = append(dto.ExcludeMonths, int(month))
		}
	}
	return dto
}

func (h *BlockedDayHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req blockedDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode blocked-day request", "error", err)
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

	logger := h.log(r.Context(), "Create", "recurring", req.Recurring)

	rule, err := h.service.CreateRule(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "blocked-day creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("rule_id", rule.ID).InfoContext(r.Context(), "blocked-day rule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, blockedDayResponse{Rule: toBlockedDayDTO(rule)})
}

func (h *BlockedDayHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	rule, err := h.service.GetRule(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "rule_id", id).ErrorContext(r.Context(), "blocked-day lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, blockedDayResponse{Rule: toBlockedDayDTO(rule)})
}

func (h *BlockedDayHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rules, err := h.service.ListRules(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "blocked-day listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]blockedDayDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, toBlockedDayDTO(rule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, blockedDayListResponse{Rules: dtos})
}

func (h *BlockedDayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	logger := h.log(r.Context(), "Delete", "rule_id", id)

	if err := h.service.DeleteRule(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "blocked-day deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "blocked-day rule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Effective expands every stored rule over the requested date range.
func (h *BlockedDayHandler) Effective(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest,
			errors.New("from and to query parameters are required"))
		return
	}

	blocks, err := h.service.EffectiveBlocks(r.Context(), from, to)
	if err != nil {
		h.log(r.Context(), "Effective").ErrorContext(r.Context(), "blocked-day expansion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]effectiveBlockDTO, 0, len(blocks))
	for _, block := range blocks {
		dtos = append(dtos, effectiveBlockDTO{
			Start: block.Start.Format(time.RFC3339),
			End:   block.End.Format(time.RFC3339),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, effectiveBlockListResponse{Blocks: dtos})
}
