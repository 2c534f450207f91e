package topics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adsp-prep/backend/internal/models"
)

// TranscriptFetcher resolves a video URL to its transcript text, for
// core-content updates sourced from lecture videos.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

type Handler struct {
	store       *Store
	transcripts TranscriptFetcher
}

func NewHandler(store *Store, transcripts TranscriptFetcher) *Handler {
	return &Handler{store: store, transcripts: transcripts}
}

// ListSubjects handles GET /subjects.
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.ListSubjects()
	if err != nil {
		writeServiceError(w, "list subjects", err)
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	writeJSON(w, http.StatusOK, models.SubjectListResponse{Subjects: subjects, Total: len(subjects)})
}

// ListMainTopics handles GET /subjects/{id}/main-topics.
func (h *Handler) ListMainTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetSubject(id); err != nil {
		writeServiceError(w, "list main topics", err)
		return
	}

	topics, err := h.store.ListMainTopics(id)
	if err != nil {
		writeServiceError(w, "list main topics", err)
		return
	}
	if topics == nil {
		topics = []models.MainTopic{}
	}
	writeJSON(w, http.StatusOK, models.MainTopicListResponse{MainTopics: topics, Total: len(topics)})
}

// ListSubTopics handles GET /main-topics/{id}/sub-topics.
func (h *Handler) ListSubTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	topics, err := h.store.ListSubTopics(id)
	if err != nil {
		writeServiceError(w, "list sub topics", err)
		return
	}
	if topics == nil {
		topics = []models.SubTopic{}
	}
	writeJSON(w, http.StatusOK, models.SubTopicListResponse{SubTopics: topics, Total: len(topics)})
}

// GetCoreContent handles GET /sub-topics/{id}/core-content.
func (h *Handler) GetCoreContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	topic, err := h.store.GetSubTopicWithContent(id)
	if err != nil {
		writeServiceError(w, "get core content", err)
		return
	}

	resp := models.CoreContentResponse{
		SubTopicID: topic.ID,
		Name:       topic.Name,
		UpdatedAt:  topic.UpdatedAt,
	}
	if topic.CoreContent != nil {
		resp.CoreContent = *topic.CoreContent
	}
	if topic.SourceType != nil {
		resp.SourceType = *topic.SourceType
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateCoreContent handles PUT /sub-topics/{id}/core-content. Content is
// appended, never replaced; a url source is resolved to its transcript first.
func (h *Handler) UpdateCoreContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CoreContentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "content is required"})
		return
	}

	fragment := req.Content
	switch req.SourceType {
	case "text", "":
		req.SourceType = "text"
	case "url":
		text, err := h.transcripts.Fetch(r.Context(), req.Content)
		if err != nil {
			writeServiceError(w, "fetch transcript", err)
			return
		}
		fragment = text
	default:
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "source_type must be text or url"})
		return
	}

	topic, err := h.store.AppendCoreContent(id, fragment, req.SourceType)
	if err != nil {
		writeServiceError(w, "update core content", err)
		return
	}

	resp := models.CoreContentResponse{
		SubTopicID: topic.ID,
		Name:       topic.Name,
		UpdatedAt:  topic.UpdatedAt,
	}
	if topic.CoreContent != nil {
		resp.CoreContent = *topic.CoreContent
	}
	if topic.SourceType != nil {
		resp.SourceType = *topic.SourceType
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid ID"})
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := models.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[topics] %s failed: %v", op, err)
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
