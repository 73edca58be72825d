// Package detector guesses the language of lyrics for batch cases marked
// "auto".
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/lyricval/internal"
)

// Auto is the language value that asks for detection.
const Auto = "auto"

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over all languages. Passing languages restricts
// the candidate set, which is faster and steadier on short lyrics.
func New(languages ...lingua.Language) *Detector {
	var builder lingua.LanguageDetectorBuilder
	if len(languages) >= 2 {
		builder = lingua.NewLanguageDetectorBuilder().FromLanguages(languages...)
	} else {
		builder = lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	}
	return &Detector{detector: builder.Build()}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectLines detects the language of the countable lines only, so
// [BLANK] placeholders do not skew the guess.
func (d *Detector) DetectLines(lines []string) (string, bool) {
	var kept []string
	for _, l := range lines {
		if internal.IsCountable(l) {
			kept = append(kept, strings.TrimSpace(l))
		}
	}
	return d.DetectISO(strings.Join(kept, "\n"))
}

// Resolve returns lang unchanged unless it is empty or "auto", in which
// case the language of lines is detected. Undetectable text yields "".
func (d *Detector) Resolve(lang string, lines []string) string {
	lang = strings.TrimSpace(lang)
	if lang != "" && !strings.EqualFold(lang, Auto) {
		return lang
	}
	code, ok := d.DetectLines(lines)
	if !ok {
		return ""
	}
	return code
}
