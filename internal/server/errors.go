package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/josephgoksu/taskgraph/internal/task"
)

var errInternal = errors.New("internal error")

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case task.CodeNotFound:
		return http.StatusNotFound
	case task.CodeValidation, task.CodeSelfDependency, task.CodeCyclicDependency:
		return http.StatusBadRequest
	case task.CodeDependencyNotSatisfied, task.CodeHasDependents, task.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as the error envelope. Internal errors do not leak
// their message.
func writeError(w http.ResponseWriter, err error) {
	code := task.Kind(err)
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg, Details: task.Details(err)}})
}

func writeAPIJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &task.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
