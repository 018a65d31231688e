// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"go.uber.org/zap"
)

type body struct {
	Error detail `json:"error"`
}

type detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write renders err as {"error":{"code","message"}} with the status its kind
// maps to. Errors without a kind are INTERNAL. INTERNAL causes are logged and
// replaced with a fixed message.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apperr.As(err)
	if e == nil {
		e = apperr.Internal(err)
	}

	msg := e.Msg
	switch e.Kind {
	case apperr.KindInternal:
		msg = "internal error"
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
	default:
		if log != nil {
			log.Debug("request rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("code", string(e.Kind)),
				zap.String("message", e.Msg))
		}
	}

	WriteStatus(w, apperr.HTTPStatus(e.Kind), string(e.Kind), msg)
}

// WriteStatus writes an error body with an explicit status and code.
func WriteStatus(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, body{Error: detail{Code: code, Message: msg}})
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
