// Package render builds the final line-aligned text from a validation.
package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/valpere/lyricval/internal"
)

// Mode selects how untranslated lines are rendered.
type Mode string

const (
	// Fallback shows the original line wherever a translation is missing and
	// keeps blank lines, so the output is always displayable.
	Fallback Mode = "fallback"
	// Diagnostic shows an explicit [MISSING: ...] marker and skips blank lines.
	Diagnostic Mode = "diagnostic"
)

// ExcerptLimit caps the original text quoted inside a missing marker, in runes.
const ExcerptLimit = 50

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown render mode")

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Fallback:
		return Fallback, nil
	case Diagnostic:
		return Diagnostic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Build renders matched translations over the original lines.
func Build(mode Mode, lines []string, matched map[int]internal.TranslationLine) string {
	switch mode {
	case Fallback:
		return FallbackText(lines, matched)
	case Diagnostic:
		return DiagnosticText(lines, matched)
	}
	return DiagnosticText(lines, matched)
}

// FallbackText emits one line per original line, translated where possible.
func FallbackText(lines []string, matched map[int]internal.TranslationLine) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if tl, ok := matched[i]; ok {
			out[i] = singleLine(tl.Text)
			continue
		}
		out[i] = l
	}
	return strings.Join(out, "\n")
}

// DiagnosticText emits one line per countable original line.
func DiagnosticText(lines []string, matched map[int]internal.TranslationLine) string {
	var out []string
	for _, sl := range internal.NewSourceLines(lines) {
		if !sl.Countable {
			continue
		}
		if tl, ok := matched[sl.Index]; ok {
			out = append(out, singleLine(tl.Text))
			continue
		}
		out = append(out, MissingMarker(sl.Text))
	}
	return strings.Join(out, "\n")
}

// singleLine folds a multi-line payload into one line so every slot of
// the output stays on its own line.
func singleLine(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}
	var parts []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// MissingMarker renders the placeholder for an untranslated line.
func MissingMarker(original string) string {
	r := []rune(original)
	if len(r) > ExcerptLimit {
		return "[MISSING: " + string(r[:ExcerptLimit]) + "...]"
	}
	return "[MISSING: " + original + "]"
}

var (
	reTimestamp = regexp.MustCompile(`\[\d{2}:\d{2}\.\d{2,3}\]`)
	reMissing   = regexp.MustCompile(`\[MISSING:.*?\]`)
)

// Plaintext strips LRC timestamps and missing markers from rendered text and
// drops the lines left empty. The result suits reference-free quality
// estimators that expect bare sentences.
func Plaintext(text string) string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = reTimestamp.ReplaceAllString(l, "")
		l = strings.TrimSpace(reMissing.ReplaceAllString(l, ""))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
