package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"agenteval/internal/model"
	"agenteval/internal/rating"
	"agenteval/internal/service"
)

// EvaluationHandler handles the rater-facing scoring endpoints
type EvaluationHandler struct {
	evalSvc *service.EvaluationService
	authSvc *service.AuthService
	notices *service.NoticeCenter
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evalSvc *service.EvaluationService, authSvc *service.AuthService, notices *service.NoticeCenter) *EvaluationHandler {
	return &EvaluationHandler{evalSvc: evalSvc, authSvc: authSvc, notices: notices}
}

// StartSessionRequest is the request body for opening a scoring session
type StartSessionRequest struct {
	TopicID int `json:"topicId"`
}

// StartSession handles POST /v1/evaluation/session. When the body names no
// topic the rater's assigned one is used.
func (h *EvaluationHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req StartSessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	topicID := req.TopicID
	if topicID <= 0 {
		assigned, err := h.authSvc.TopicForUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		topicID = assigned
	}
	if topicID <= 0 {
		writeError(w, http.StatusBadRequest, "no topic set assigned")
		return
	}

	state, err := h.evalSvc.StartSession(r.Context(), claims.UserID, claims.Username, topicID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// EndSession handles DELETE /v1/evaluation/session
func (h *EvaluationHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.evalSvc.EndSession(claimsFrom(r).UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// ScoreRequest is the request body for recording one dimension score
type ScoreRequest struct {
	AnswerID  string `json:"answerId"`
	Dimension string `json:"dimension"`
	Value     int    `json:"value"`
}

// ScoreResponse carries the post-update rating and overall progress
type ScoreResponse struct {
	Rating   *model.QuestionRating `json:"rating"`
	Progress model.Progress        `json:"progress"`
}

// UpdateScore handles PUT /v1/evaluation/questions/{questionId}/score
func (h *EvaluationHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil || questionID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := claimsFrom(r)
	qr, progress, err := h.evalSvc.UpdateScore(r.Context(), claims.UserID, questionID, req.AnswerID, model.Dimension(req.Dimension), req.Value)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Rating: qr, Progress: progress})
}

// QuestionRating handles GET /v1/evaluation/questions/{questionId}
func (h *EvaluationHandler) QuestionRating(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil || questionID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	qr, err := h.evalSvc.QuestionRating(claimsFrom(r).UserID, questionID)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qr)
}

// Progress handles GET /v1/evaluation/progress
func (h *EvaluationHandler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.evalSvc.Progress(claimsFrom(r).UserID)
	if err != nil {
		writeEvaluationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// ClearAll handles DELETE /v1/evaluation/ratings
func (h *EvaluationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.evalSvc.ClearAll(r.Context(), claimsFrom(r).UserID); err != nil {
		writeEvaluationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Notices handles GET /v1/evaluation/notices, draining any pending sync
// failure messages for the rater
func (h *EvaluationHandler) Notices(w http.ResponseWriter, r *http.Request) {
	notices := h.notices.Drain(claimsFrom(r).Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{"notices": notices})
}

func writeEvaluationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rating.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rating.ErrInvalidScoreValue),
		errors.Is(err, rating.ErrInvalidDimension),
		errors.Is(err, rating.ErrInvalidAnswerReference):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
