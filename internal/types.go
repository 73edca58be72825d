package internal

import (
	"strings"
	"time"
)

// BlankPlaceholder stands in for an empty source line in the tagged contract.
const BlankPlaceholder = "[BLANK]"

// Status is the terminal quality tier of one validation.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusAutoFixed Status = "auto_fixed"
	StatusError     Status = "error"
)

// Name returns the upper-case enum name used in reports.
func (s Status) Name() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusAutoFixed:
		return "AUTO_FIXED"
	case StatusError:
		return "ERROR"
	default:
		return strings.ToUpper(string(s))
	}
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IssueKind is the closed set of problems a validation can report.
type IssueKind string

const (
	IssueEmptyResponse        IssueKind = "empty_response"
	IssueNoTranslationMarkers IssueKind = "no_translation_markers"
	IssueInvalidFormat        IssueKind = "invalid_format"
	IssueTooManyMissing       IssueKind = "too_many_missing"
	IssueWrongMarkerDirection IssueKind = "wrong_marker_direction"
	IssueMissingLineNumbers   IssueKind = "missing_line_numbers"
	// IssueInconsistentSpacing is never emitted; the parser tolerates
	// spacing variations. It stays in the set for report compatibility, and
	// metrics export a zero series for it.
	IssueInconsistentSpacing IssueKind = "inconsistent_spacing"
	IssueExtraContent        IssueKind = "extra_content"
	IssueLineCountMismatch   IssueKind = "line_count_mismatch"
)

// IssueKinds lists every kind in declaration order.
var IssueKinds = []IssueKind{
	IssueEmptyResponse,
	IssueNoTranslationMarkers,
	IssueInvalidFormat,
	IssueTooManyMissing,
	IssueWrongMarkerDirection,
	IssueMissingLineNumbers,
	IssueInconsistentSpacing,
	IssueExtraContent,
	IssueLineCountMismatch,
}

// Fatal reports whether the kind alone forces an ERROR status.
func (k IssueKind) Fatal() bool {
	switch k {
	case IssueEmptyResponse, IssueNoTranslationMarkers, IssueInvalidFormat, IssueTooManyMissing:
		return true
	case IssueWrongMarkerDirection, IssueMissingLineNumbers, IssueInconsistentSpacing,
		IssueExtraContent, IssueLineCountMismatch:
		return false
	}
	return false
}

// Issue is one problem found while validating a response. Lines holds
// 0-based original indices, except for repair issues where it holds the tag
// ordinals seen in the response.
type Issue struct {
	Kind        IssueKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	Lines       []int     `json:"lines,omitempty"`
	AutoFixable bool      `json:"auto_fixable"`
}

// SourceLine is one line of the original lyrics.
type SourceLine struct {
	Index     int
	Text      string
	Countable bool
}

// IsCountable reports whether a raw line takes part in alignment.
func IsCountable(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && t != BlankPlaceholder
}

// NewSourceLines indexes raw lines and marks the countable ones.
func NewSourceLines(lines []string) []SourceLine {
	out := make([]SourceLine, len(lines))
	for i, l := range lines {
		out[i] = SourceLine{Index: i, Text: l, Countable: IsCountable(l)}
	}
	return out
}

// TranslationLine is a parsed translation matched to an original line.
type TranslationLine struct {
	Ordinal    int     `json:"ordinal"`
	Text       string  `json:"text"`
	Original   string  `json:"original,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Run identifies one validated translation in the history store.
type Run struct {
	ID         string    `json:"id"`
	BatchID    string    `json:"batch_id,omitempty"`
	CaseID     string    `json:"case_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	SourceText string    `json:"source_text"`
	SourceLang string    `json:"source_lang,omitempty"`
	TargetLang string    `json:"target_lang,omitempty"`
	Style      string    `json:"style,omitempty"`
	Model      string    `json:"model,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
