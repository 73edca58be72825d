// Package validator checks a model's line-tagged translation of a lyrics
// text, repairs what it safely can, and classifies the outcome as SUCCESS,
// AUTO_FIXED or ERROR.
//
// Validation never fails on malformed input: every call returns a complete
// Result with its issues and a best-effort cleaned text. A Validator holds
// only immutable settings and is safe for concurrent use.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/align"
	"github.com/valpere/lyricval/internal/autofix"
	"github.com/valpere/lyricval/internal/marker"
	"github.com/valpere/lyricval/internal/render"
)

const (
	// DefaultMaxMissingRate is the missing rate above which a parse is an ERROR.
	DefaultMaxMissingRate = 0.30
	// DefaultLenientMissingRate is the missing rate below which a parse
	// is tolerated without an advisory warning.
	DefaultLenientMissingRate = 0.10
)

// ErrBadThresholds is returned by New for thresholds outside 0 ≤ lenient ≤ max ≤ 1.
var ErrBadThresholds = errors.New("invalid missing-rate thresholds")

// Thresholds tune the classifier.
type Thresholds struct {
	MaxMissingRate     float64 `mapstructure:"max_missing_rate" json:"max_missing_rate"`
	LenientMissingRate float64 `mapstructure:"lenient_missing_rate" json:"lenient_missing_rate"`
}

// DefaultThresholds returns the 30% / 10% policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxMissingRate:     DefaultMaxMissingRate,
		LenientMissingRate: DefaultLenientMissingRate,
	}
}

func (t Thresholds) validate() error {
	if t.LenientMissingRate < 0 || t.MaxMissingRate > 1 || t.LenientMissingRate > t.MaxMissingRate {
		return fmt.Errorf("%w: lenient=%.2f max=%.2f", ErrBadThresholds, t.LenientMissingRate, t.MaxMissingRate)
	}
	return nil
}

// Validator validates translation responses.
type Validator struct {
	thresholds Thresholds
	mode       render.Mode
	log        *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithThresholds overrides the classifier thresholds.
func WithThresholds(t Thresholds) Option {
	return func(v *Validator) { v.thresholds = t }
}

// WithMode selects how CleanedText renders missing lines.
func WithMode(m render.Mode) Option {
	return func(v *Validator) { v.mode = m }
}

// WithLogger attaches a logger for debug traces of repairs and outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// New creates a Validator. Without options it uses the default thresholds
// and diagnostic rendering.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		thresholds: DefaultThresholds(),
		mode:       render.Diagnostic,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.thresholds.validate(); err != nil {
		return nil, err
	}
	if _, err := render.ParseMode(string(v.mode)); err != nil {
		return nil, err
	}
	return v, nil
}

var defaultValidator, _ = New()

// Validate checks rawResponse against originalLines with the default settings.
func Validate(rawResponse string, originalLines []string) Result {
	return defaultValidator.Validate(rawResponse, originalLines)
}

// ValidateText splits originalText into lines and validates with the
// default settings.
func ValidateText(rawResponse, originalText string) Result {
	return defaultValidator.ValidateText(rawResponse, originalText)
}

// Thresholds returns the classifier thresholds in use.
func (v *Validator) Thresholds() Thresholds { return v.thresholds }

// Mode returns the rendering mode used for CleanedText.
func (v *Validator) Mode() render.Mode { return v.mode }

// ValidateText splits originalText on line boundaries and validates.
func (v *Validator) ValidateText(rawResponse, originalText string) Result {
	return v.Validate(rawResponse, marker.SplitLines(originalText))
}

// Validate checks rawResponse against originalLines. The caller's slice is
// copied and never modified.
func (v *Validator) Validate(rawResponse string, originalLines []string) Result {
	lines := append([]string(nil), originalLines...)
	var issues []internal.Issue

	if strings.TrimSpace(rawResponse) == "" {
		issues = append(issues, internal.Issue{
			Kind:     internal.IssueEmptyResponse,
			Severity: internal.SeverityCritical,
			Message:  "model returned an empty response",
		})
		return v.terminal(rawResponse, lines, issues)
	}

	out := v.parse(rawResponse)
	issues = append(issues, out.issues...)

	if !out.parsed.Matched {
		issue := internal.Issue{
			Kind:     internal.IssueNoTranslationMarkers,
			Severity: internal.SeverityCritical,
			Message:  "no translation markers found and no repair applied",
		}
		if out.repaired {
			issue.Kind = internal.IssueInvalidFormat
			issue.Message = "no translation markers found even after repair"
		}
		issues = append(issues, issue)
		return v.terminal(rawResponse, lines, issues)
	}

	if out.parsed.Trailing != "" {
		v.log.Debug("dropped trailing text", zap.Int("bytes", len(out.parsed.Trailing)))
		issues = append(issues, internal.Issue{
			Kind:        internal.IssueExtraContent,
			Severity:    internal.SeverityInfo,
			Message:     "removed text after the last translated line",
			AutoFixable: true,
		})
	}

	al := align.Align(out.parsed.Lines, lines)
	status, issues := classify(al, out.repaired, issues, v.thresholds)

	res := Result{
		Status:          status,
		Lines:           al.Lines,
		CountableLines:  al.Countable,
		TranslatedLines: len(al.Lines),
		MissingLines:    al.Missing,
		Issues:          issues,
		RawResponse:     rawResponse,
		CleanedText:     render.Build(v.mode, lines, al.Lines),
	}
	v.trace(res)
	return res
}

// parseOutcome carries the state of the parse chain.
type parseOutcome struct {
	parsed   marker.Parsed
	issues   []internal.Issue
	repaired bool
}

// parseStep is one attempt in the parse chain. It receives the outcome of
// the previous steps and returns the updated one.
type parseStep func(raw string, prev parseOutcome) parseOutcome

// parse runs the steps in order and stops at the first that matches.
func (v *Validator) parse(raw string) parseOutcome {
	steps := []parseStep{v.parseDirect, v.parseRepaired}
	var out parseOutcome
	for _, step := range steps {
		out = step(raw, out)
		if out.parsed.Matched {
			break
		}
	}
	return out
}

func (v *Validator) parseDirect(raw string, _ parseOutcome) parseOutcome {
	return parseOutcome{parsed: marker.Parse(raw)}
}

func (v *Validator) parseRepaired(raw string, prev parseOutcome) parseOutcome {
	fix := autofix.Apply(raw)
	if !fix.Applied {
		return prev
	}
	for _, is := range fix.Issues {
		v.log.Debug("repair applied", zap.String("kind", string(is.Kind)), zap.Ints("lines", is.Lines))
	}
	return parseOutcome{
		parsed:   marker.Parse(fix.Text),
		issues:   append(prev.issues, fix.Issues...),
		repaired: true,
	}
}

// terminal builds the result for a response that yielded no parse at all.
func (v *Validator) terminal(raw string, lines []string, issues []internal.Issue) Result {
	var missing []int
	for _, sl := range align.Countable(lines) {
		missing = append(missing, sl.Index)
	}
	matched := map[int]internal.TranslationLine{}
	res := Result{
		Status:         internal.StatusError,
		Lines:          matched,
		CountableLines: len(missing),
		MissingLines:   missing,
		Issues:         issues,
		RawResponse:    raw,
		CleanedText:    render.Build(v.mode, lines, matched),
	}
	v.trace(res)
	return res
}

func (v *Validator) trace(res Result) {
	v.log.Debug("validation finished",
		zap.String("status", res.Status.Name()),
		zap.Int("countable", res.CountableLines),
		zap.Int("translated", res.TranslatedLines),
		zap.Int("missing", len(res.MissingLines)),
		zap.Int("issues", len(res.Issues)),
	)
}
