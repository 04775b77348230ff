package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"agenteval/internal/service"
)

// DashboardHandler handles the admin overview endpoints
type DashboardHandler struct {
	dashSvc *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashSvc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

// Stats handles GET /v1/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashSvc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Results handles GET /v1/dashboard/results?page=&pageSize=
func (h *DashboardHandler) Results(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	results, err := h.dashSvc.Results(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// UserResults handles GET /v1/dashboard/users/{userName}/topics/{topicId}/results
func (h *DashboardHandler) UserResults(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	topicID, err := strconv.Atoi(vars["topicId"])
	if err != nil || topicID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}

	rows, err := h.dashSvc.UserResults(r.Context(), vars["userName"], topicID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// ExportCSV handles GET /v1/dashboard/export
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation_results.csv"`)
	if err := h.dashSvc.ExportCSV(r.Context(), w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
