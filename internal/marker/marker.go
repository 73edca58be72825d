// Package marker implements the line-tagged contract exchanged with the
// translating model. Encode renders source lyrics as numbered
// "__L0001__ >>> text" lines; Parse recovers the "__L0001__ <<< translation"
// segments the model is expected to send back.
package marker

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/lyricval/internal"
)

const (
	// InputArrow marks a source line handed to the model.
	InputArrow = ">>>"
	// OutputArrow marks a translated line returned by the model.
	OutputArrow = "<<<"
	// TagPrefix opens every index tag.
	TagPrefix = "__L"
)

var (
	// any index tag, either direction
	reTag = regexp.MustCompile(`__L(\d{4})__`)

	reOutput = regexp.MustCompile(`__L(\d{4})__\s*<<<`)

	reInput = regexp.MustCompile(`__L(\d{4})__\s*>>>`)

	reBlankGap = regexp.MustCompile(`\n[ \t]*\n`)
)

// Tag renders the index tag for a 1-based line number.
func Tag(n int) string {
	return fmt.Sprintf("__L%04d__", n)
}

// SplitLines normalises line endings, trims the outer whitespace of text and
// splits it into lines. An empty text yields a single empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSpace(text), "\n")
}

// Encode tags every line of text, blank ones included.
func Encode(text string) string {
	return EncodeLines(SplitLines(text))
}

// EncodeLines tags each line with its 1-based position among all lines.
// Blank lines carry the [BLANK] placeholder so the model keeps their slot.
func EncodeLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		text := norm.NFC.String(strings.TrimSpace(line))
		if text == "" {
			text = internal.BlankPlaceholder
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", Tag(i+1), InputArrow, text)
	}
	return b.String()
}

// Parsed is the outcome of one Parse call.
type Parsed struct {
	// Matched is false when no output tag appeared at all, which is
	// different from tags that carried no usable payload.
	Matched bool
	// Lines maps 1-based ordinals to trimmed, non-empty payloads.
	Lines map[int]string
	// Trailing is text after the last tag that was cut from the final
	// payload, trimmed. Empty when nothing was cut.
	Trailing string
}

// Ordinals returns the parsed ordinals in ascending order.
func (p Parsed) Ordinals() []int {
	out := make([]int, 0, len(p.Lines))
	for n := range p.Lines {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Parse extracts output-direction segments from text. A payload runs from
// its tag to the next index tag of either direction and may span several
// lines. The last payload ends at the first blank line; whatever follows is
// reported in Trailing. [BLANK] and empty payloads are dropped; for a
// repeated ordinal the first usable payload wins.
func Parse(text string) Parsed {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	outputs := reOutput.FindAllStringSubmatchIndex(text, -1)
	if len(outputs) == 0 {
		return Parsed{}
	}

	tags := reTag.FindAllStringIndex(text, -1)
	res := Parsed{Matched: true, Lines: make(map[int]string, len(outputs))}

	for _, m := range outputs {
		segment := text[m[1]:nextTag(tags, m[1], len(text))]
		if m[1]+len(segment) == len(text) {
			segment, res.Trailing = cutTrailing(segment)
		}

		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n == 0 {
			continue
		}
		payload := cleanPayload(segment)
		if payload == "" || payload == internal.BlankPlaceholder {
			continue
		}
		// First answer wins, not last-write-wins: a repeated tag is
		// usually a restatement or annotation of a line already answered.
		if _, dup := res.Lines[n]; dup {
			continue
		}
		res.Lines[n] = payload
	}
	return res
}

// cutTrailing splits the final segment at the first blank line after its
// payload starts. A closing fence or ### left in the tail is not commentary.
func cutTrailing(segment string) (string, string) {
	start := len(segment) - len(strings.TrimLeft(segment, " \t\n"))
	loc := reBlankGap.FindStringIndex(segment[start:])
	if loc == nil {
		return segment, ""
	}
	cut := start + loc[0]
	tail := strings.TrimSpace(segment[cut:])
	for _, d := range []string{"```", "###"} {
		tail = strings.TrimSpace(strings.Trim(tail, d))
	}
	return segment[:cut], tail
}

// InputOrdinals returns the ordinals of input-direction tags in order of
// appearance.
func InputOrdinals(text string) []int {
	var out []int
	for _, m := range reInput.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// HasTag reports whether text contains anything that looks like an index tag.
func HasTag(text string) bool {
	return strings.Contains(text, TagPrefix)
}

// nextTag returns the start of the first tag at or after pos, or end when
// none remain.
func nextTag(tags [][]int, pos, end int) int {
	i := sort.Search(len(tags), func(i int) bool { return tags[i][0] >= pos })
	if i < len(tags) {
		return tags[i][0]
	}
	return end
}

// cleanPayload strips code-fence or ### wrappers and anything before a
// stray arrow left inside the segment.
func cleanPayload(s string) string {
	s = stripWrapping(strings.TrimSpace(s))
	if i := strings.LastIndex(s, OutputArrow); i >= 0 {
		s = s[i+len(OutputArrow):]
	}
	if i := strings.LastIndex(s, InputArrow); i >= 0 {
		s = s[i+len(InputArrow):]
	}
	return strings.TrimSpace(s)
}

func stripWrapping(s string) string {
	for _, d := range []string{"```", "###"} {
		if len(s) >= 2*len(d) && strings.HasPrefix(s, d) && strings.HasSuffix(s, d) {
			s = strings.TrimSpace(s[len(d) : len(s)-len(d)])
		}
	}
	// a fence opened before the first tag closes inside the last payload
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	return s
}
