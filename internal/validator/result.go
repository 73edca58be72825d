package validator

import (
	"github.com/valpere/lyricval/internal"
)

// AcceptableRate is the success rate from which a result is usable as is.
const AcceptableRate = 0.7

// Result is the outcome of one validation. It is built once and not
// modified afterwards.
type Result struct {
	Status internal.Status
	// Lines maps 0-based original indices to matched translations.
	Lines           map[int]internal.TranslationLine
	CountableLines  int
	TranslatedLines int
	// MissingLines holds countable original indices with no translation, ascending.
	MissingLines []int
	Issues       []internal.Issue
	RawResponse  string
	CleanedText  string
}

// SuccessRate is translated / countable, 0 when nothing is countable.
func (r Result) SuccessRate() float64 {
	if r.CountableLines == 0 {
		return 0
	}
	return float64(r.TranslatedLines) / float64(r.CountableLines)
}

// IsAcceptable reports whether at least 70% of the lines were translated.
func (r Result) IsAcceptable() bool {
	return r.SuccessRate() >= AcceptableRate
}

// HasIssue reports whether an issue of kind was raised.
func (r Result) HasIssue(kind internal.IssueKind) bool {
	for _, is := range r.Issues {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

// Report is the serialisable view of a Result handed to reporting and
// storage.
type Report struct {
	Status              string        `json:"status"`
	SuccessRate         float64       `json:"success_rate"`
	TranslatedLineCount int           `json:"translated_line_count"`
	CountableLineCount  int           `json:"countable_line_count"`
	MissingLineIndices  []int         `json:"missing_line_indices"`
	Issues              []ReportIssue `json:"issues"`
	CleanedText         string        `json:"cleaned_text"`
}

type ReportIssue struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	AutoFixable bool   `json:"auto_fixable"`
}

// Report converts r to its serialisable shape. Lists are never nil so they
// encode as [] rather than null.
func (r Result) Report() Report {
	rep := Report{
		Status:              r.Status.Name(),
		SuccessRate:         r.SuccessRate(),
		TranslatedLineCount: r.TranslatedLines,
		CountableLineCount:  r.CountableLines,
		MissingLineIndices:  append([]int{}, r.MissingLines...),
		Issues:              make([]ReportIssue, 0, len(r.Issues)),
		CleanedText:         r.CleanedText,
	}
	for _, is := range r.Issues {
		rep.Issues = append(rep.Issues, ReportIssue{
			Kind:        string(is.Kind),
			Severity:    string(is.Severity),
			Message:     is.Message,
			AutoFixable: is.AutoFixable,
		})
	}
	return rep
}
