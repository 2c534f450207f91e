package exam

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adsp-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Start handles POST /exam/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.ExamStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Start(r.Context(), req)
	if err != nil {
		writeServiceError(w, "start exam", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SubmitAnswer handles POST /exam/submit.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.ExamSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.ExamSessionID == "" || req.QuizID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_session_id and quiz_id are required"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), req)
	if err != nil {
		writeServiceError(w, "submit answer", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Result handles GET /exam/{session_id}/result.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "session_id is required"})
		return
	}

	resp, err := h.service.Result(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, "exam result", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := models.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[exam] %s failed: %v", op, err)
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
