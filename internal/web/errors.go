package web

// errors.go renders errors for clients.
//
// The technical error is logged with the request id; the client gets the
// core.MapError message and code as JSON, or as an HTML fragment for the
// preview form.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/fastaframes/internal/core"
	"github.com/JonMunkholm/fastaframes/internal/logging"
	"github.com/JonMunkholm/fastaframes/internal/store"
	"github.com/JonMunkholm/fastaframes/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks client mistakes that have no better classification.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return errBadRequest{msg: msg} }

var errRequestTooLarge = errors.New("http: request body too large")

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was ready.
const statusClientClosedRequest = 499

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		srcErr *core.SourceError
		bad    errBadRequest
	)
	switch {
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTooManyConversions), errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.As(err, &bad), errors.As(err, &srcErr):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "decode table"), strings.Contains(err.Error(), "unknown table format"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// isTooLarge reports whether err came from the body size limit. Some
// readers flatten the error to text, so the message is checked too.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// userMessage maps err, preferring the size limit over the read error
// that carries it.
func userMessage(err error) core.UserMessage {
	if isTooLarge(err) {
		return core.MapError(errRequestTooLarge)
	}
	var bad errBadRequest
	if errors.As(err, &bad) {
		return core.UserMessage{Message: bad.msg, Action: "Check the request parameters", Code: "REQ003"}
	}
	return core.MapError(err)
}

// respondError logs err and writes the mapped message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := userMessage(err)

	if status == statusClientClosedRequest {
		respondLog(r).Info("request cancelled", "path", r.URL.Path, "method", r.Method)
	} else {
		respondLog(r).Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
			"code", msg.Code,
		)
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsHTML reports whether the client is the browser form rather than an
// API caller.
func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return r.Header.Get("HX-Request") == "true" ||
		strings.Contains(r.Header.Get("Accept"), "text/html") ||
		r.URL.Path == "/preview"
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		respondLog(r).Error("json encode error", "error", err)
	}
}

func respondLog(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}
