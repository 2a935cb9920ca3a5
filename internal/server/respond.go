package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gserrors "github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/observability"
)

// maxBody caps request bodies; graphs arrive inline.
const maxBody = 32 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := gserrors.GetCode(err)
	switch code {
	case gserrors.ErrCodeInvalidInput, gserrors.ErrCodeInvalidGraph,
		gserrors.ErrCodeInvalidConfig, gserrors.ErrCodeMissingContainer:
		status = http.StatusBadRequest
	case gserrors.ErrCodeUnsupportedLayout, gserrors.ErrCodeUnsupportedFormat:
		status = http.StatusUnprocessableEntity
	case gserrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case gserrors.ErrCodeNotLoaded:
		status = http.StatusConflict
	case gserrors.ErrCodeDestroyed:
		status = http.StatusGone
	}
	if errors.Is(err, ErrStoreFull) {
		status, code = http.StatusServiceUnavailable, gserrors.ErrCodeInternal
	}
	if code == "" {
		code = gserrors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	body := errorBody{Code: string(code), Message: gserrors.UserMessage(err)}
	if full := err.Error(); full != body.Message {
		body.Detail = full
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return gserrors.Wrap(gserrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// instrument reports every request to the HTTP hooks, labelled by route
// pattern so session ids do not explode label cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(), "duration", time.Since(start))
	})
}
