// Package autofix repairs common formatting mistakes in model responses that
// carry no output-direction tags, so the marker parser can be retried.
//
// Repairs run in a fixed order and each may fire independently:
//  1. Direction swap: the model echoed ">>>" instead of answering with "<<<"
//  2. Numbered list: the model dropped the tags and numbered its lines
//  3. Preamble strip: lead-in chatter and reasoning blocks are removed
package autofix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/marker"
)

// MinNumberedLines is the fewest enumerated lines that count as a numbered
// list. Shorter enumerations are too likely to be incidental.
const MinNumberedLines = 4

// Fix is the outcome of Apply.
type Fix struct {
	Text    string
	Applied bool
	Issues  []internal.Issue
}

type repair func(text string) (string, *internal.Issue)

var repairs = []repair{
	swapDirection,
	convertNumberedList,
	stripPreamble,
}

// Apply runs every repair in order on text. Each repair that changes the
// text contributes one issue.
func Apply(text string) Fix {
	fix := Fix{Text: text}
	for _, r := range repairs {
		out, issue := r(fix.Text)
		if issue == nil {
			continue
		}
		fix.Text = out
		fix.Applied = true
		fix.Issues = append(fix.Issues, *issue)
	}
	return fix
}

// --- direction swap ---

func swapDirection(text string) (string, *internal.Issue) {
	if !strings.Contains(text, marker.InputArrow) || strings.Contains(text, marker.OutputArrow) {
		return text, nil
	}
	ordinals := marker.InputOrdinals(text)
	if len(ordinals) == 0 {
		return text, nil
	}
	return strings.ReplaceAll(text, marker.InputArrow, marker.OutputArrow), &internal.Issue{
		Kind:        internal.IssueWrongMarkerDirection,
		Severity:    internal.SeverityWarning,
		Message:     fmt.Sprintf("response used the input marker (%s) instead of %s; corrected", marker.InputArrow, marker.OutputArrow),
		Lines:       ordinals,
		AutoFixable: true,
	}
}

// --- numbered list ---

// reNumbered matches "1. text" or "1) text" on a trimmed line.
var reNumbered = regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`)

func convertNumberedList(text string) (string, *internal.Issue) {
	if marker.HasTag(text) {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	matched := 0
	for _, l := range lines {
		if reNumbered.MatchString(strings.TrimSpace(l)) {
			matched++
		}
	}
	if matched < MinNumberedLines {
		return text, nil
	}

	var ordinals []int
	for i, l := range lines {
		m := reNumbered.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ordinals = append(ordinals, n)
		lines[i] = fmt.Sprintf("%s %s %s", marker.Tag(n), marker.OutputArrow, m[2])
	}

	return strings.Join(lines, "\n"), &internal.Issue{
		Kind:        internal.IssueMissingLineNumbers,
		Severity:    internal.SeverityWarning,
		Message:     fmt.Sprintf("response had no line tags; converted %d numbered lines", matched),
		Lines:       ordinals,
		AutoFixable: true,
	}
}

// --- preamble strip ---

// preamblePatterns match lead-in phrases models add despite instructions.
// They are anchored to a line start so lyrics that merely contain the
// words are left alone.
var preamblePatterns = []*regexp.Regexp{
	// complete and truncated reasoning blocks
	regexp.MustCompile(`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`),
	regexp.MustCompile(`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`),
	// 以下是翻译： / 翻译如下：
	regexp.MustCompile(`(?m)^[ \t]*以下是翻译[：:][ \t]*`),
	regexp.MustCompile(`(?m)^[ \t]*翻译如下[：:][ \t]*`),
	// 我已经为您翻译了…
	regexp.MustCompile(`(?m)^[ \t]*我已.*翻译.*\n`),
	// "Certainly / Sure / Of course[,] here is [the] translation:"
	regexp.MustCompile(`(?im)^[ \t]*(?:certainly|sure|of course)[,.!]?[ \t]+here(?:'s| is)(?: the)? (?:refined |polished |translated )?(?:translation|text|lyrics)[ \t]*[：:][ \t]*`),
	// "Here is / Here's [the] translation:"
	regexp.MustCompile(`(?im)^[ \t]*here(?:'s| is)(?: the)? (?:refined |polished |translated )?(?:translation|text|lyrics)[ \t]*[：:][ \t]*`),
	// "Translation:"
	regexp.MustCompile(`(?im)^[ \t]*translation[ \t]*[：:][ \t]*`),
}

func stripPreamble(text string) (string, *internal.Issue) {
	changed := false
	for _, re := range preamblePatterns {
		if !re.MatchString(text) {
			continue
		}
		text = re.ReplaceAllString(text, "")
		changed = true
	}
	if !changed {
		return text, nil
	}
	return text, &internal.Issue{
		Kind:        internal.IssueExtraContent,
		Severity:    internal.SeverityInfo,
		Message:     "removed explanatory text around the translation",
		AutoFixable: true,
	}
}
