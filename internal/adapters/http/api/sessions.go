package api

import (
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/okian/prepdeck/internal/app"
)

// SessionsHandler serves the adaptive test session routes.
type SessionsHandler struct {
	deps         SessionDependencies
	maxBodyBytes int64
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies, maxBodyBytes int64) *SessionsHandler {
	return &SessionsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req service.CreateSessionRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.CreateSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	view, err := h.deps.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleAnswer handles POST /sessions/{id}/answers requests.
func (h *SessionsHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_answer"
	var req service.AnswerRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	fb, err := h.deps.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// HandleResult handles GET /sessions/{id}/result requests.
func (h *SessionsHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_result"
	res, err := h.deps.Result(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleEnd handles DELETE /sessions/{id} requests. The session is finished
// but kept until it expires so its result stays readable.
func (h *SessionsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	const op = "api.end_session"
	if _, err := h.deps.EndSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
