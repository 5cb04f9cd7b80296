// Package api provides HTTP handlers for the bridge API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/containerd/errdefs"

	"github.com/neuronudge/nova-bridge/internal/automation"
	"github.com/neuronudge/nova-bridge/internal/domain"
)

// maxRequestBodySize is the maximum allowed request body size (64KB).
const maxRequestBodySize = 64 << 10

var errInvalidBody = errors.New("invalid request body")

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads an optional JSON object into v. An empty body leaves v
// untouched. Wrong field types come back as *domain.ValidationError and
// trailing content after the object is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil {
		err = expectEOF(dec)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var (
		typeErr  *json.UnmarshalTypeError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &domain.ValidationError{
			Field:      typeErr.Field,
			Constraint: fmt.Sprintf("must be of type %s", typeErr.Type),
		}
	case errors.As(err, &tooLarge):
		return err
	default:
		return errInvalidBody
	}
}

// expectEOF rejects anything after the first JSON value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errInvalidBody
	}
}

// writeError maps an error to its HTTP status and writes it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing  *domain.MissingFieldError
		invalid  *domain.ValidationError
		dispatch *automation.DispatchError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &missing):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalid):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &tooLarge):
		Error(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, errInvalidBody):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &dispatch):
		Error(w, http.StatusBadGateway, "automation backend failed: "+dispatch.Err.Error())
	case errdefs.IsInvalidArgument(err):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Request canceled before dispatch completed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusServiceUnavailable, "request canceled")
	default:
		slog.Error("Unhandled request error", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
