// Package align maps parsed translation ordinals onto the original lyrics.
//
// Ordinals count countable lines only: the first non-blank original line is
// ordinal 1 no matter how many blank lines precede it.
package align

import (
	"github.com/valpere/lyricval/internal"
)

// DefaultConfidence is assigned to every matched line.
const DefaultConfidence = 1.0

// Alignment is the per-line mapping produced by Align.
type Alignment struct {
	// Lines maps 0-based original indices to matched translations.
	Lines map[int]internal.TranslationLine
	// Missing holds countable original indices with no translation, ascending.
	Missing []int
	// Countable is the number of countable original lines.
	Countable int
}

// MissingRate is the fraction of countable lines left untranslated, 0 when
// nothing is countable.
func (a Alignment) MissingRate() float64 {
	if a.Countable == 0 {
		return 0
	}
	return float64(len(a.Missing)) / float64(a.Countable)
}

// Countable returns the countable subset of lines in original order.
func Countable(lines []string) []internal.SourceLine {
	var out []internal.SourceLine
	for _, sl := range internal.NewSourceLines(lines) {
		if sl.Countable {
			out = append(out, sl)
		}
	}
	return out
}

// Align matches parsed ordinals to countable lines. Ordinals beyond the
// countable range are ignored.
func Align(parsed map[int]string, lines []string) Alignment {
	countable := Countable(lines)
	a := Alignment{
		Lines:     make(map[int]internal.TranslationLine, len(parsed)),
		Countable: len(countable),
	}
	for i, sl := range countable {
		ordinal := i + 1
		text, ok := parsed[ordinal]
		if !ok {
			a.Missing = append(a.Missing, sl.Index)
			continue
		}
		a.Lines[sl.Index] = internal.TranslationLine{
			Ordinal:    ordinal,
			Text:       text,
			Original:   sl.Text,
			Confidence: DefaultConfidence,
		}
	}
	return a
}
