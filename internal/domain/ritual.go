// Package domain contains the request entities accepted by the bridge.
package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinRitualSeconds     = 30
	MaxRitualSeconds     = 900
	DefaultRitualSeconds = 90
	DefaultRitualKind    = "breathing"
	MaxKindLength        = 64

	MaxURLLength        = 2048
	DefaultSelectorHint = "textarea, [contenteditable=true]"
)

// BreakRitualInput carries raw break-ritual fields. Nil means absent.
type BreakRitualInput struct {
	Seconds   *int    `json:"seconds"`
	Kind      *string `json:"kind"`
	MuteSlack *bool   `json:"mute_slack"`
}

// BreakRitualRequest is a validated request to start a break ritual.
type BreakRitualRequest struct {
	Seconds   int
	Kind      string
	MuteSlack bool
}

// NewBreakRitualRequest applies defaults and validates bounds.
// Out-of-range values are rejected, never clamped.
func NewBreakRitualRequest(in BreakRitualInput) (BreakRitualRequest, error) {
	req := BreakRitualRequest{
		Seconds:   DefaultRitualSeconds,
		Kind:      DefaultRitualKind,
		MuteSlack: true,
	}
	if in.Seconds != nil {
		req.Seconds = *in.Seconds
	}
	if in.Kind != nil {
		req.Kind = *in.Kind
	}
	if in.MuteSlack != nil {
		req.MuteSlack = *in.MuteSlack
	}

	if req.Seconds < MinRitualSeconds || req.Seconds > MaxRitualSeconds {
		return BreakRitualRequest{}, &ValidationError{
			Field:      "seconds",
			Constraint: fmt.Sprintf("must be between %d and %d", MinRitualSeconds, MaxRitualSeconds),
		}
	}
	if utf8.RuneCountInString(req.Kind) > MaxKindLength {
		return BreakRitualRequest{}, &ValidationError{
			Field:      "kind",
			Constraint: fmt.Sprintf("must be at most %d characters", MaxKindLength),
		}
	}
	return req, nil
}

// ReentryInput carries raw re-entry fields. Nil means absent.
type ReentryInput struct {
	URL          *string `json:"url"`
	Note         *string `json:"note"`
	SelectorHint *string `json:"selector_hint"`
}

// ReentryRequest is a validated request to restore the editing context.
type ReentryRequest struct {
	URL          string
	Note         string
	SelectorHint string
}

// NewReentryRequest applies defaults and validates the target URL.
// A blank URL yields a MissingFieldError; an oversized one a ValidationError.
func NewReentryRequest(in ReentryInput) (ReentryRequest, error) {
	req := ReentryRequest{SelectorHint: DefaultSelectorHint}
	if in.URL != nil {
		req.URL = *in.URL
	}
	if in.Note != nil {
		req.Note = *in.Note
	}
	if in.SelectorHint != nil {
		req.SelectorHint = *in.SelectorHint
	}

	if strings.TrimSpace(req.URL) == "" {
		return ReentryRequest{}, &MissingFieldError{Field: "url"}
	}
	if utf8.RuneCountInString(req.URL) > MaxURLLength {
		return ReentryRequest{}, &ValidationError{
			Field:      "url",
			Constraint: fmt.Sprintf("must be at most %d characters", MaxURLLength),
		}
	}
	return req, nil
}
