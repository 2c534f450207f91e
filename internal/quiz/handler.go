package quiz

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/adsp-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GenerateStudyBatch handles POST /quiz/study.
func (h *Handler) GenerateStudyBatch(w http.ResponseWriter, r *http.Request) {
	var req models.StudyQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SubTopicID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "sub_topic_id is required"})
		return
	}

	resp, err := h.service.GenerateStudyBatch(r.Context(), req)
	if err != nil {
		writeServiceError(w, "generate study batch", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNextQuestion handles POST /quiz/study/next.
func (h *Handler) GetNextQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.NextQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SubTopicID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "sub_topic_id is required"})
		return
	}

	resp, err := h.service.GetNextQuestion(r.Context(), req)
	if err != nil {
		writeServiceError(w, "get next question", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateFromSource handles POST /quiz/generate.
func (h *Handler) GenerateFromSource(w http.ResponseWriter, r *http.Request) {
	var req models.QuizCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.GenerateFromSource(r.Context(), req)
	if err != nil {
		writeServiceError(w, "generate from source", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListQuizzes handles GET /quiz.
func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r.URL.Query(), "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	questions, err := h.service.store.ListRecent(limit)
	if err != nil {
		writeServiceError(w, "list quizzes", err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuizListResponse{
		Quizzes: toResponses(questions),
		Total:   len(questions),
	})
}

// GetQuiz handles GET /quiz/{id}.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q, err := h.service.store.GetQuestion(id)
	if err != nil {
		writeServiceError(w, "get quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, q.ToResponse())
}

// UpdateQuiz handles PUT /quiz/{id}.
func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.QuizUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.UpdateQuestion(id, req)
	if err != nil {
		writeServiceError(w, "update quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateQuiz handles POST /quiz/{id}/validate.
func (h *Handler) ValidateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ValidateQuiz(r.Context(), id)
	if err != nil {
		writeServiceError(w, "validate quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetValidation handles GET /quiz/{id}/validation.
func (h *Handler) GetValidation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.service.GetValidation(id)
	if err != nil {
		writeServiceError(w, "get validation", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Dashboard handles GET /quiz/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, "quiz dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz ID"})
		return 0, false
	}
	return id, true
}

// writeServiceError maps a service error onto its HTTP status. Unclassified
// errors are logged with context and surfaced as a generic server error.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := models.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[quiz] %s failed: %v", op, err)
		writeJSON(w, status, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	if s := query.Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return defaultVal
}
