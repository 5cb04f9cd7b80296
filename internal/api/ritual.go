package api

import (
	"context"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/neuronudge/nova-bridge/internal/automation"
	"github.com/neuronudge/nova-bridge/internal/domain"
	"github.com/neuronudge/nova-bridge/internal/prompt"
)

// Dispatcher executes composed prompts.
type Dispatcher interface {
	Dispatch(ctx context.Context, job automation.Job) (automation.Result, error)
	Available() bool
}

// RitualResponse is the envelope returned by both ritual endpoints.
type RitualResponse struct {
	Status  string `json:"status"`
	Nova    bool   `json:"nova"`
	Skipped string `json:"skipped,omitempty"`
}

// RitualOptions configures prompt rendering for the ritual endpoints.
type RitualOptions struct {
	BreathingURL   string
	BreakStartPage string
}

// RitualHandler handles break-ritual and re-entry requests.
type RitualHandler struct {
	dispatcher Dispatcher
	opts       RitualOptions
}

// NewRitualHandler creates a new ritual handler.
func NewRitualHandler(dispatcher Dispatcher, opts RitualOptions) *RitualHandler {
	return &RitualHandler{dispatcher: dispatcher, opts: opts}
}

// RegisterRoutes registers ritual routes.
func (h *RitualHandler) RegisterRoutes(r chi.Router) {
	r.Post("/break-ritual", h.BreakRitual)
	r.Post("/reentry", h.Reentry)
}

// BreakRitual kicks off a short reset ritual.
func (h *RitualHandler) BreakRitual(w http.ResponseWriter, r *http.Request) {
	var in domain.BreakRitualInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := domain.NewBreakRitualRequest(in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Triggering Nova break ritual",
		"kind", req.Kind,
		"seconds", req.Seconds,
		"mute_slack", req.MuteSlack)

	res, err := h.dispatcher.Dispatch(r.Context(), automation.Job{
		Ritual:        automation.RitualBreak,
		Prompt:        prompt.BreakRitual(req, prompt.BreakOptions{BreathingURL: h.opts.BreathingURL}),
		StartingPage:  h.opts.BreakStartPage,
		FallbackDelay: automation.BreakFallbackDelay(req.Seconds),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newRitualResponse(res))
}

// Reentry cues the re-entry automation once the reset finishes.
func (h *RitualHandler) Reentry(w http.ResponseWriter, r *http.Request) {
	var in domain.ReentryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := domain.NewReentryRequest(in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Triggering Nova reentry",
		"url", req.URL,
		"selector_hint", req.SelectorHint,
		"note_len", utf8.RuneCountInString(req.Note))

	res, err := h.dispatcher.Dispatch(r.Context(), automation.Job{
		Ritual:        automation.RitualReentry,
		Prompt:        prompt.Reentry(req),
		StartingPage:  req.URL,
		FallbackDelay: automation.ReentryFallbackDelay,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newRitualResponse(res))
}

func newRitualResponse(res automation.Result) RitualResponse {
	return RitualResponse{
		Status:  "ok",
		Nova:    res.Nova,
		Skipped: res.Skipped,
	}
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	dispatcher Dispatcher
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(dispatcher Dispatcher) *HealthHandler {
	return &HealthHandler{dispatcher: dispatcher}
}

// Health reports liveness and whether the real backend would be used.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"nova_available": h.dispatcher.Available(),
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
