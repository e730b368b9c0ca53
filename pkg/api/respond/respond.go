// Package respond writes JSON bodies and maps service errors to status codes.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"property_report/pkg/core/report"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

// Decode reads a single JSON request body into v, rejecting unknown fields
// and bodies over MaxBodyBytes.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// StatusFor maps an error from the report service to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, report.ErrUpstream), errors.Is(err, report.ErrContract):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err with its mapped status. Internal errors are not echoed.
func FromError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	Error(w, status, msg)
}
