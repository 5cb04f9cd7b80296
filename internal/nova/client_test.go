package nova

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/neuronudge/nova-bridge/internal/automation"
)

type fakeRuntime struct {
	mu         sync.Mutex
	opened     []openSessionRequest
	prompts    []string
	released   []string
	authHeader string
	actStatus  int
	actBody    actResponse
	actDelay   time.Duration
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		actStatus: http.StatusOK,
		actBody:   actResponse{Status: statusSucceeded, Response: "Ready to resume."},
	}
}

func (f *fakeRuntime) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req openSessionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.opened = append(f.opened, req)
		f.authHeader = r.Header.Get("Authorization")
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(openSessionResponse{SessionID: "sess-1"})
	})
	mux.HandleFunc("POST /v1/sessions/{id}/act", func(w http.ResponseWriter, r *http.Request) {
		var req actRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		delay := f.actDelay
		f.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(f.actStatus)
		_ = json.NewEncoder(w).Encode(f.actBody)
	})
	mux.HandleFunc("DELETE /v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.released = append(f.released, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeRuntime) releasedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}

func startRuntime(t *testing.T, rt *fakeRuntime) *Client {
	t.Helper()
	srv := httptest.NewServer(rt.handler())
	t.Cleanup(srv.Close)
	return NewClient(Config{Endpoint: srv.URL + "/"}, srv.Client(), nil)
}

func TestAvailableRequiresEndpoint(t *testing.T) {
	if NewClient(Config{}, nil, nil).Available() {
		t.Fatal("client without endpoint must be unavailable")
	}
	if NewClient(Config{Endpoint: "  "}, nil, nil).Available() {
		t.Fatal("blank endpoint must be unavailable")
	}
	if !NewClient(Config{Endpoint: "http://127.0.0.1:9000"}, nil, nil).Available() {
		t.Fatal("configured endpoint must be available")
	}
}

func TestInvokeRunsScopedSession(t *testing.T) {
	rt := newFakeRuntime()
	client := startRuntime(t, rt)

	inv := automation.Invocation{
		ID:           "dispatch-1",
		Prompt:       "1. Navigate to https://docs.example.com",
		StartingPage: "https://docs.example.com",
		APIKey:       "secret",
	}
	if err := client.Invoke(context.Background(), inv); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.opened) != 1 || rt.opened[0].StartingPage != inv.StartingPage || rt.opened[0].ClientToken != "dispatch-1" {
		t.Fatalf("unexpected session open: %+v", rt.opened)
	}
	if rt.authHeader != "Bearer secret" {
		t.Fatalf("unexpected Authorization header %q", rt.authHeader)
	}
	if len(rt.prompts) != 1 || rt.prompts[0] != inv.Prompt {
		t.Fatalf("unexpected prompts: %v", rt.prompts)
	}
	if len(rt.released) != 1 || rt.released[0] != "sess-1" {
		t.Fatalf("expected session release, got %v", rt.released)
	}
}

func TestInvokeReleasesSessionOnActFailure(t *testing.T) {
	rt := newFakeRuntime()
	rt.actBody = actResponse{Status: "failed", Error: "selector not found"}
	client := startRuntime(t, rt)

	err := client.Invoke(context.Background(), automation.Invocation{ID: "d", APIKey: "k", Prompt: "p"})
	if !errors.Is(err, errActFailed) {
		t.Fatalf("expected errActFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "selector not found") {
		t.Fatalf("expected runtime message in error, got %v", err)
	}
	if rt.releasedCount() != 1 {
		t.Fatalf("expected session release after failure, got %d", rt.releasedCount())
	}
}

func TestInvokeSurfacesHTTPErrors(t *testing.T) {
	rt := newFakeRuntime()
	rt.actStatus = http.StatusUnauthorized
	rt.actBody = actResponse{Error: "invalid api key"}
	client := startRuntime(t, rt)

	err := client.Invoke(context.Background(), automation.Invocation{ID: "d", APIKey: "bad", Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "status 401") || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("unexpected error: %v", err)
	}
	if rt.releasedCount() != 1 {
		t.Fatalf("expected session release after HTTP error, got %d", rt.releasedCount())
	}
}

func TestInvokeReleasesSessionOnCancel(t *testing.T) {
	rt := newFakeRuntime()
	rt.actDelay = time.Minute
	client := startRuntime(t, rt)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Invoke(ctx, automation.Invocation{ID: "d", APIKey: "k", Prompt: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if rt.releasedCount() != 1 {
		t.Fatalf("expected session release after cancellation, got %d", rt.releasedCount())
	}
}

func TestInvokeActTimeout(t *testing.T) {
	rt := newFakeRuntime()
	rt.actDelay = time.Minute
	srv := httptest.NewServer(rt.handler())
	t.Cleanup(srv.Close)
	client := NewClient(Config{Endpoint: srv.URL, ActTimeout: 30 * time.Millisecond}, srv.Client(), nil)

	err := client.Invoke(context.Background(), automation.Invocation{ID: "d", APIKey: "k", Prompt: "p"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected act timeout, got %v", err)
	}
}

func TestInvokeWithoutEndpoint(t *testing.T) {
	if err := NewClient(Config{}, nil, nil).Invoke(context.Background(), automation.Invocation{}); err == nil {
		t.Fatal("expected error without endpoint")
	}
}
