package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// sessionID parses the {id} path segment. Anything that is not a UUID cannot
// name a session, so it is reported as not found.
func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(urlParam(r, "id"))
	if err != nil {
		return uuid.Nil, chatdeskErrors.NotFound("chat " + urlParam(r, "id"))
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the error taxonomy onto a status code. Internal
// details are logged and replaced with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := chatdeskErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "error", err, "category", chatdeskErrors.Category(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}
