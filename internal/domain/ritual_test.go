package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestNewBreakRitualRequestDefaults(t *testing.T) {
	req, err := NewBreakRitualRequest(BreakRitualInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Seconds != 90 || req.Kind != "breathing" || !req.MuteSlack {
		t.Fatalf("unexpected defaults: %+v", req)
	}
}

func TestNewBreakRitualRequestSecondsBounds(t *testing.T) {
	for s := MinRitualSeconds; s <= MaxRitualSeconds; s++ {
		if _, err := NewBreakRitualRequest(BreakRitualInput{Seconds: intPtr(s)}); err != nil {
			t.Fatalf("seconds=%d rejected: %v", s, err)
		}
	}

	for _, s := range []int{-1, 0, 29, 901, 3600} {
		_, err := NewBreakRitualRequest(BreakRitualInput{Seconds: intPtr(s)})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("seconds=%d: expected ValidationError, got %v", s, err)
		}
		if verr.Error() != "seconds must be between 30 and 900" {
			t.Fatalf("unexpected message: %q", verr.Error())
		}
		if !errdefs.IsInvalidArgument(err) {
			t.Fatalf("expected invalid argument classification for %v", err)
		}
	}
}

func TestNewBreakRitualRequestKindLength(t *testing.T) {
	if _, err := NewBreakRitualRequest(BreakRitualInput{Kind: strPtr(strings.Repeat("ä", 64))}); err != nil {
		t.Fatalf("64 runes should be accepted: %v", err)
	}
	_, err := NewBreakRitualRequest(BreakRitualInput{Kind: strPtr(strings.Repeat("a", 65))})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "kind" {
		t.Fatalf("expected kind ValidationError, got %v", err)
	}
}

func TestNewBreakRitualRequestMuteSlackFalse(t *testing.T) {
	req, err := NewBreakRitualRequest(BreakRitualInput{MuteSlack: boolPtr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MuteSlack {
		t.Fatal("expected mute_slack=false to be kept")
	}
}

func TestNewReentryRequestMissingURL(t *testing.T) {
	cases := map[string]*string{
		"absent":     nil,
		"empty":      strPtr(""),
		"whitespace": strPtr(" \t\n "),
	}
	for name, url := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewReentryRequest(ReentryInput{URL: url})
			var merr *MissingFieldError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if merr.Field != "url" {
				t.Fatalf("unexpected field %q", merr.Field)
			}
		})
	}
}

func TestNewReentryRequestURLTooLong(t *testing.T) {
	_, err := NewReentryRequest(ReentryInput{URL: strPtr("https://x.test/" + strings.Repeat("a", MaxURLLength))})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "url" {
		t.Fatalf("expected url ValidationError, got %v", err)
	}
}

func TestNewReentryRequestDefaults(t *testing.T) {
	req, err := NewReentryRequest(ReentryInput{URL: strPtr("https://docs.example.com/d/1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Note != "" {
		t.Fatalf("expected empty note, got %q", req.Note)
	}
	if req.SelectorHint != "textarea, [contenteditable=true]" {
		t.Fatalf("unexpected selector hint %q", req.SelectorHint)
	}
}
