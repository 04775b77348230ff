package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"agenteval/internal/model"
	"agenteval/internal/service"
)

// TopicHandler handles topic set endpoints
type TopicHandler struct {
	topicSvc *service.TopicService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(topicSvc *service.TopicService) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc}
}

// CreateTopicRequest is the request body for creating a topic set
type CreateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /v1/topics
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	claims := claimsFrom(r)
	set := &model.TopicSet{
		Name:        req.Name,
		Description: req.Description,
		Creator:     claims.Username,
		Status:      true,
	}
	id, err := h.topicSvc.Create(r.Context(), set)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	set.ID = id
	writeJSON(w, http.StatusCreated, set)
}

// List handles GET /v1/topics
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := h.topicSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": sets})
}

// Get handles GET /v1/topics/{topicId}
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(w, r)
	if !ok {
		return
	}
	set, err := h.topicSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "topic set not found")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// UpdateTopicRequest is the request body for updating a topic set
type UpdateTopicRequest struct {
	Name   *string `json:"name,omitempty"`
	Status *bool   `json:"status,omitempty"`
}

// Update handles PUT /v1/topics/{topicId}
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(w, r)
	if !ok {
		return
	}

	var req UpdateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		if err := h.topicSvc.Rename(r.Context(), id, *req.Name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Status != nil {
		if err := h.topicSvc.SetStatus(r.Context(), id, *req.Status); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /v1/topics/{topicId}
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(w, r)
	if !ok {
		return
	}
	if err := h.topicSvc.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Questions handles GET /v1/topics/{topicId}/questions
func (h *TopicHandler) Questions(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(w, r)
	if !ok {
		return
	}
	questions, err := h.topicSvc.Questions(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Import handles POST /v1/topics/{topicId}/import. The CSV comes in as a
// multipart upload under the "file" field.
func (h *TopicHandler) Import(w http.ResponseWriter, r *http.Request) {
	id, ok := topicID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	questions, err := h.topicSvc.ImportCSV(r.Context(), id, file)
	if err != nil {
		if errors.Is(err, service.ErrEmptyImport) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported":  len(questions),
		"questions": questions,
	})
}

// SampleCSV handles GET /v1/topics/sample-csv
func (h *TopicHandler) SampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="topic_template.csv"`)
	if err := h.topicSvc.SampleCSV(w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func topicID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["topicId"])
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return 0, false
	}
	return id, true
}
