package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/workflowy/internal/server"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

const (
	// TraceHeader carries the trace id in requests and responses.
	TraceHeader = "X-Request-ID"

	problemType    = "about:blank"
	validationType = "https://tools.ietf.org/html/rfc9110#section-15.5.1"

	titleOK         = "OK"
	titleValidation = "One or more validation errors occurred."
	titleRemote     = "Workflowy API error"
)

// Envelope is the body of every proxy response. Successful responses carry
// Data; failures carry Detail and Errors.
type Envelope struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title"`
	Status  int    `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Data    any    `json:"data"`
	Errors  any    `json:"errors"`
	TraceID string `json:"traceId"`
}

// traceID returns the caller's X-Request-ID or a new random id.
func traceID(r *http.Request) string {
	if id := r.Header.Get(TraceHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeEnvelope(srv server.Server, w http.ResponseWriter, r *http.Request, env Envelope) {
	env.TraceID = traceID(r)
	if env.Errors == nil {
		env.Errors = map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(TraceHeader, env.TraceID)
	w.WriteHeader(env.Status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		srv.Logger.Error("error encoding response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
}

func respondOK(srv server.Server, w http.ResponseWriter, r *http.Request, data any) {
	writeEnvelope(srv, w, r, Envelope{
		Title:  titleOK,
		Status: http.StatusOK,
		Data:   data,
	})
}

func respondValidation(srv server.Server, w http.ResponseWriter, r *http.Request, err error) {
	writeEnvelope(srv, w, r, Envelope{
		Type:   validationType,
		Title:  titleValidation,
		Status: http.StatusBadRequest,
		Errors: validationErrors(err),
	})
}

// respondError maps err onto a problem response. title is used for errors
// that did not come from the remote API.
func respondError(srv server.Server, w http.ResponseWriter, r *http.Request, title string, err error) {
	var vErr validation.Error
	var vErrs validation.Errors
	if errors.As(err, &vErrs) || errors.As(err, &vErr) {
		respondValidation(srv, w, r, err)
		return
	}

	env := Envelope{
		Type:   problemType,
		Title:  title,
		Status: statusFor(err),
		Detail: err.Error(),
	}

	var wfErr *workflowy.Error
	if errors.As(err, &wfErr) {
		env.Title = titleRemote
		env.Detail = wfErr.Message()
		env.Errors = remoteErrors(wfErr)
	}

	srv.Logger.Error(title,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"status", env.Status,
	)
	writeEnvelope(srv, w, r, env)
}

// statusFor returns the HTTP status reported for err.
func statusFor(err error) int {
	var wfErr *workflowy.Error
	if !errors.As(err, &wfErr) {
		return http.StatusInternalServerError
	}

	switch wfErr.Kind {
	case workflowy.HttpFailure:
		if wfErr.StatusCode >= 400 && wfErr.StatusCode <= 599 {
			return wfErr.StatusCode
		}
		return http.StatusBadGateway
	case workflowy.TransportFailure:
		if isTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// remoteErrors returns the remote error content for the errors field.
func remoteErrors(wfErr *workflowy.Error) any {
	switch d := wfErr.Detail.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return d
	default:
		return map[string]any{"detail": d}
	}
}

// validationErrors converts err into a map of lowerCamel field names to
// messages.
func validationErrors(err error) map[string][]string {
	out := map[string][]string{}

	var vErrs validation.Errors
	if !errors.As(err, &vErrs) {
		out["request"] = []string{err.Error()}
		return out
	}

	keys := make([]string, 0, len(vErrs))
	for k := range vErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if vErrs[k] == nil {
			continue
		}
		field := strcase.ToLowerCamel(k)
		out[field] = append(out[field], vErrs[k].Error())
	}
	return out
}
