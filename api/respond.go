// Package api holds the shared response envelope for the HTTP layer. Every
// failure renders as {"status":"FAILED","reason":...} so no error reaches the
// boundary unhandled.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/model"
	"github.com/skyops/fleetmatch/core/reassign"
)

// Failure is the error envelope returned by every endpoint.
type Failure struct {
	Status string                `json:"status"`
	Reason string                `json:"reason"`
	Report *model.ConflictReport `json:"report,omitempty"`
}

// WriteJSON encodes v with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a success envelope. The payload map is merged with the status
// field.
func OK(w http.ResponseWriter, payload map[string]any) {
	body := map[string]any{"status": "OK"}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}

// Fail maps the error taxonomy onto HTTP status codes and writes the failure
// envelope.
func Fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	f := Failure{Status: "FAILED", Reason: err.Error()}

	var nf assignment.NotFoundError
	var cv assignment.ConstraintViolationError
	var io assignment.IOFailureError
	switch {
	case errors.As(err, &nf):
		code = http.StatusNotFound
	case errors.As(err, &cv):
		code = http.StatusConflict
		f.Report = &cv.Report
	case errors.Is(err, assignment.ErrNoEligibleCandidate):
		code = http.StatusConflict
	case errors.Is(err, reassign.ErrSweepInProgress):
		code = http.StatusTooManyRequests
	case errors.As(err, &io):
		code = http.StatusBadGateway
	}
	WriteJSON(w, code, f)
}

// BadRequest writes a failure envelope for malformed input.
func BadRequest(w http.ResponseWriter, reason string) {
	WriteJSON(w, http.StatusBadRequest, Failure{Status: "FAILED", Reason: reason})
}

// MethodNotAllowed writes a failure envelope for unsupported methods.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteJSON(w, http.StatusMethodNotAllowed, Failure{Status: "FAILED", Reason: "method not allowed"})
}
