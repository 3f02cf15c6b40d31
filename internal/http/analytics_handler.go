package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/center-roster/internal/application"
)

type analyticsService interface {
	TrainerWorkloads(ctx context.Context, fromDate, toDate string) ([]application.TrainerWorkload, error)
	SeatUtilization(ctx context.Context, fromDate, toDate string) ([]application.TypeUtilization, error)
}

type AnalyticsHandler struct {
	service   analyticsService
	responder responder
	logger    *slog.Logger
}

func NewAnalyticsHandler(service analyticsService, logger *slog.Logger) *AnalyticsHandler {
	base := defaultLogger(logger)
	return &AnalyticsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AnalyticsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AnalyticsHandler", operation, attrs...)
}

type workloadDTO struct {
	TrainerID    string         `json:"trainer_id"`
	TrainerName  string         `json:"trainer_name"`
	SessionCount int            `json:"session_count"`
	TotalMinutes int            `json:"total_minutes"`
	ByType       map[string]int `json:"by_type"`
}

type workloadListResponse struct {
	Workloads []workloadDTO `json:"workloads"`
}

type utilizationDTO struct {
	Type            string  `json:"type"`
	BookedMinutes   int     `json:"booked_minutes"`
	CapacityMinutes int     `json:"capacity_minutes"`
	Utilization     float64 `json:"utilization"`
}

type utilizationListResponse struct {
	Utilizations []utilizationDTO `json:"utilizations"`
}

func rangeParams(r *http.Request) (string, string, error) {
	query := r.URL.Query()
	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		return "", "", errors.New("from and to query parameters are required")
	}
	return from, to, nil
}

func (h *AnalyticsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := rangeParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	workloads, err := h.service.TrainerWorkloads(r.Context(), from, to)
	if err != nil {
		h.log(r.Context(), "Workload").ErrorContext(r.Context(), "workload report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]workloadDTO, 0, len(workloads))
	for _, workload := range workloads {
		byType := make(map[string]int, len(workload.ByType))
		for sessionType, minutes := range workload.ByType {
			byType[string(sessionType)] = minutes
		}
		dtos = append(dtos, workloadDTO{
			TrainerID:    workload.TrainerID,
			TrainerName:  workload.TrainerName,
			SessionCount: workload.SessionCount,
			TotalMinutes: workload.TotalMinutes,
			ByType:       byType,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, workloadListResponse{Workloads: dtos})
}

func (h *AnalyticsHandler) Utilization(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	from, to, err := rangeParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	utilizations, err := h.service.SeatUtilization(r.Context(), from, to)
	if err != nil {
		h.log(r.Context(), "Utilization").ErrorContext(r.Context(), "utilization report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]utilizationDTO, 0, len(utilizations))
	for _, utilization := range utilizations {
		dtos = append(dtos, utilizationDTO{
			Type:            string(utilization.Type),
			BookedMinutes:   utilization.BookedMinutes,
			CapacityMinutes: utilization.CapacityMinutes,
			Utilization:     utilization.Utilization,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, utilizationListResponse{Utilizations: dtos})
}
