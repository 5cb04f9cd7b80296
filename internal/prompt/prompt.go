// Package prompt renders natural-language automation instructions for rituals.
//
// Every function in this package is pure: the same request always yields the
// same prompt, byte for byte.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neuronudge/nova-bridge/internal/domain"
)

const (
	// MinTimerSeconds and MaxTimerSeconds bound the duration handed to the
	// breathing timer page. Narrower than the accepted request range.
	MinTimerSeconds = 30
	MaxTimerSeconds = 300

	// DefaultBreathingURL is the breathing exercise page opened by break rituals.
	DefaultBreathingURL = "https://www.calm.com/breathe"

	// ResumeConfirmation is the phrase the agent replies with after re-entry.
	ResumeConfirmation = "Ready to resume."
)

var newlineRun = regexp.MustCompile(`[ \t]*[\r\n]+[ \t]*`)

// BreakOptions configures break ritual rendering.
type BreakOptions struct {
	BreathingURL string
}

// DurationLabel renders seconds as "Xm Ys", "X minute(s)" or "X second(s)".
func DurationLabel(seconds int) string {
	minutes, rest := seconds/60, seconds%60
	switch {
	case minutes > 0 && rest > 0:
		return fmt.Sprintf("%dm %ds", minutes, rest)
	case minutes > 0:
		return plural(minutes, "minute")
	default:
		return plural(seconds, "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// ClampTimerSeconds clamps seconds into [MinTimerSeconds, MaxTimerSeconds].
func ClampTimerSeconds(seconds int) int {
	return min(MaxTimerSeconds, max(MinTimerSeconds, seconds))
}

// BreakRitual renders the four-step breathing ritual. Muting Slack adds
// exactly one trailing line and leaves the rest untouched.
func BreakRitual(req domain.BreakRitualRequest, opts BreakOptions) string {
	base := opts.BreathingURL
	if base == "" {
		base = DefaultBreathingURL
	}
	label := DurationLabel(req.Seconds)

	lines := []string{
		fmt.Sprintf("You are guiding a %s focus break.", label),
		fmt.Sprintf("1. Open %s?duration=%d in the current tab.", base, ClampTimerSeconds(req.Seconds)),
		"2. Start the breathing exercise timer.",
		"3. If a confirmation or consent dialog appears, acknowledge it so the exercise keeps running.",
		fmt.Sprintf("4. Reply with \"Break ritual started for %s.\"", label),
	}
	if req.MuteSlack {
		lines = append(lines, "Before starting the timer in step 2, pause Slack notifications for 1 hour.")
	}
	return strings.Join(lines, "\n")
}

// SanitizeNote trims the note and folds every run of line breaks into a
// single space. A note made only of whitespace becomes empty.
func SanitizeNote(note string) string {
	return newlineRun.ReplaceAllString(strings.TrimSpace(note), " ")
}

// quoteSafe rewrites double quotes to single quotes so embedded user text
// cannot close the surrounding quotation.
func quoteSafe(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}

// Reentry renders the instructions that restore the caret in the document
// the user left. The note step is omitted when the sanitized note is empty.
func Reentry(req domain.ReentryRequest) string {
	lines := []string{
		fmt.Sprintf("1. Navigate to %s and wait for the page to finish loading.", req.URL),
		fmt.Sprintf("2. Focus the first element matching the selector \"%s\".", quoteSafe(req.SelectorHint)),
		"3. Place the caret at the end of the existing content. Do not submit or send anything.",
	}
	step := 4
	if note := SanitizeNote(req.Note); note != "" {
		lines = append(lines, fmt.Sprintf("%d. Type this reminder exactly as written: \"%s\"", step, quoteSafe(note)))
		step++
	}
	lines = append(lines, fmt.Sprintf("%d. Reply with \"%s\"", step, ResumeConfirmation))
	return strings.Join(lines, "\n")
}
