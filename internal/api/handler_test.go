//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neuronudge/nova-bridge/internal/automation"
	"github.com/neuronudge/nova-bridge/internal/domain"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing field", &domain.MissingFieldError{Field: "url"}, http.StatusBadRequest},
		{"validation", &domain.ValidationError{Field: "seconds", Constraint: "must be between 30 and 900"}, http.StatusUnprocessableEntity},
		{"invalid body", errInvalidBody, http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{"dispatch", &automation.DispatchError{Ritual: "reentry", Backend: "fake", Err: errors.New("boom")}, http.StatusBadGateway},
		{"wrapped dispatch", fmt.Errorf("outer: %w", &automation.DispatchError{Err: errors.New("boom")}), http.StatusBadGateway},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodPost, "/x", nil), tc.err)
			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rr.Code)
			}
		})
	}
}
