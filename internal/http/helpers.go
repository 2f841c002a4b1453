package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// The status line is already sent; an encode failure means the client went away.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err through the kind table. Errors without a kind are
// logged with the request logger and never leak their text to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, applog.ComponentHTTP, r.Method+" "+r.Pattern,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()))
	}
	writeJSON(w, status, errorResponse{
		Error:     MessageFor(kind),
		Kind:      kind,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

// writeMessage sends an error body that is not tied to a domain kind.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: trace.GetRequestID(r.Context()),
	})
}
