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
	"github.com/example/center-roster/internal/validate"
)

var (
	errInvalidStudentID = errors.New("a student id is required")
	errInvalidTrainerID = errors.New("a trainer id is required")
)

type rosterService interface {
	CreateStudent(ctx context.Context, input application.StudentInput) (application.Student, error)
	GetStudent(ctx context.Context, id string) (application.Student, error)
	UpdateStudent(ctx context.Context, id string, input application.StudentInput) (application.Student, error)
	ListStudents(ctx context.Context) ([]application.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	CreateTrainer(ctx context.Context, input application.TrainerInput) (application.Trainer, error)
	GetTrainer(ctx context.Context, id string) (application.Trainer, error)
	UpdateTrainer(ctx context.Context, id string, input application.TrainerInput) (application.Trainer, error)
	ListTrainers(ctx context.Context) ([]application.Trainer, error)
	DeleteTrainer(ctx context.Context, id string) error
}

type RosterHandler struct {
	service   rosterService
	validator *validate.Validator
	responder responder
	logger    *slog.Logger
}

func NewRosterHandler(service rosterService, validator *validate.Validator, logger *slog.Logger) *RosterHandler {
	base := defaultLogger(logger)
	if validator == nil {
		validator = validate.New()
	}
	return &RosterHandler{service: service, validator: validator, responder: newResponder(base), logger: base}
}

func (h *RosterHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RosterHandler", operation, attrs...)
}

type studentRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Notes string `json:"notes"`
}

type trainerRequest struct {
	Name               string `json:"name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	CanDoGTAssessments bool   `json:"can_do_gt_assessments"`
}

type studentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type trainerDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	CanDoGTAssessments bool   `json:"can_do_gt_assessments"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type studentResponse struct {
	Student studentDTO `json:"student"`
}

type studentListResponse struct {
	Students []studentDTO `json:"students"`
}

type trainerResponse struct {
	Trainer trainerDTO `json:"trainer"`
}

type trainerListResponse struct {
	Trainers []trainerDTO `json:"trainers"`
}

func toStudentDTO(student application.Student) studentDTO {
	return studentDTO{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Notes:     student.Notes,
		CreatedAt: student.CreatedAt.Format(time.RFC3339),
		UpdatedAt: student.UpdatedAt.Format(time.RFC3339),
	}
}

func toTrainerDTO(trainer application.Trainer) trainerDTO {
	return trainerDTO{
		ID:                 trainer.ID,
		Name:               trainer.Name,
		Email:              trainer.Email,
		CanDoGTAssessments: trainer.CanDoGTAssessments,
		CreatedAt:          trainer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          trainer.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *RosterHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateStudent", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student request", "error", err)
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

	logger := h.log(r.Context(), "CreateStudent")

	student, err := h.service.CreateStudent(r.Context(), application.StudentInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("student_id", student.ID).InfoContext(r.Context(), "student created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, studentResponse{Student: toStudentDTO(student)})
}

func (h *RosterHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	student, err := h.service.GetStudent(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "GetStudent", "student_id", id).ErrorContext(r.Context(), "student lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *RosterHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateStudent", "student_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode student update", "error", err)
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

	logger := h.log(r.Context(), "UpdateStudent", "student_id", id)

	student, err := h.service.UpdateStudent(r.Context(), id, application.StudentInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "student update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

func (h *RosterHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		h.log(r.Context(), "ListStudents").ErrorContext(r.Context(), "student listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]studentDTO, 0, len(students))
	for _, student := range students {
		dtos = append(dtos, toStudentDTO(student))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentListResponse{Students: dtos})
}

func (h *RosterHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStudentID)
		return
	}

	logger := h.log(r.Context(), "DeleteStudent", "student_id", id)

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "student deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RosterHandler) CreateTrainer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req trainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateTrainer", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode trainer request", "error", err)
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

	logger := h.log(r.Context(), "CreateTrainer")

	trainer, err := h.service.CreateTrainer(r.Context(), application.TrainerInput{
		Name:               req.Name,
		Email:              req.Email,
		CanDoGTAssessments: req.CanDoGTAssessments,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "trainer creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("trainer_id", trainer.ID).InfoContext(r.Context(), "trainer created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, trainerResponse{Trainer: toTrainerDTO(trainer)})
}

func (h *RosterHandler) GetTrainer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTrainerID)
		return
	}

	trainer, err := h.service.GetTrainer(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "GetTrainer", "trainer_id", id).ErrorContext(r.Context(), "trainer lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, trainerResponse{Trainer: toTrainerDTO(trainer)})
}

func (h *RosterHandler) UpdateTrainer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTrainerID)
		return
	}

	var req trainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateTrainer", "trainer_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode trainer update", "error", err)
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

	logger := h.log(r.Context(), "UpdateTrainer", "trainer_id", id)

	trainer, err := h.service.UpdateTrainer(r.Context(), id, application.TrainerInput{
		Name:               req.Name,
		Email:              req.Email,
		CanDoGTAssessments: req.CanDoGTAssessments,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "trainer update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "trainer updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, trainerResponse{Trainer: toTrainerDTO(trainer)})
}

func (h *RosterHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trainers, err := h.service.ListTrainers(r.Context())
	if err != nil {
		h.log(r.Context(), "ListTrainers").ErrorContext(r.Context(), "trainer listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]trainerDTO, 0, len(trainers))
	for _, trainer := range trainers {
		dtos = append(dtos, toTrainerDTO(trainer))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, trainerListResponse{Trainers: dtos})
}

func (h *RosterHandler) DeleteTrainer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTrainerID)
		return
	}

	logger := h.log(r.Context(), "DeleteTrainer", "trainer_id", id)

	if err := h.service.DeleteTrainer(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "trainer deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "trainer deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
