// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Handler serves the router's fallback responses.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, r, h.Log, apperr.NotFound("no route for "+r.Method+" "+r.URL.Path))
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method "+r.Method+" not allowed")
}
