package api

import (
	"net/http"
)

type analysisRequest struct {
	ResumeText string `json:"resume_text"`
}

// AnalysisHandler serves resume analysis and the reference data behind it.
type AnalysisHandler struct {
	deps         AnalysisDependencies
	maxBodyBytes int64
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies, maxBodyBytes int64) *AnalysisHandler {
	return &AnalysisHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleAnalyze handles POST /analyses requests.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	var req analysisRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Analyze(r.Context(), req.ResumeText)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCatalog handles GET /catalog requests.
func (h *AnalysisHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog(r.Context()))
}

// HandleTopics handles GET /topics requests.
func (h *AnalysisHandler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Topics(r.Context()))
}
