package validator

import (
	"fmt"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/align"
)

// classify decides the terminal status of a parsed response. It appends the
// issues it raises to issues and returns the extended list. repaired marks a
// parse that only succeeded after auto-fix; such a result is never better
// than AUTO_FIXED.
func classify(al align.Alignment, repaired bool, issues []internal.Issue, th Thresholds) (internal.Status, []internal.Issue) {
	if al.Countable == 0 {
		issues = append(issues, internal.Issue{
			Kind:     internal.IssueLineCountMismatch,
			Severity: internal.SeverityCritical,
			Message:  "no countable original lines",
		})
		return internal.StatusError, issues
	}

	missing := len(al.Missing)
	translated := len(al.Lines)
	rate := al.MissingRate()

	if rate > th.MaxMissingRate {
		issues = append(issues, internal.Issue{
			Kind:     internal.IssueTooManyMissing,
			Severity: internal.SeverityCritical,
			Message:  fmt.Sprintf("too many missing translations: %d/%d (%.1f%%)", missing, al.Countable, rate*100),
			Lines:    append([]int(nil), al.Missing...),
		})
		return internal.StatusError, issues
	}

	if missing == 0 {
		return downgrade(internal.StatusSuccess, repaired), issues
	}

	if rate < th.LenientMissingRate {
		issues = append(issues, mismatch(translated, al, internal.SeverityInfo))
		return downgrade(internal.StatusSuccess, repaired), issues
	}

	issues = append(issues, mismatch(translated, al, internal.SeverityWarning))
	for _, is := range issues {
		if is.AutoFixable {
			return internal.StatusAutoFixed, issues
		}
	}
	return internal.StatusSuccess, issues
}

func mismatch(translated int, al align.Alignment, sev internal.Severity) internal.Issue {
	return internal.Issue{
		Kind:     internal.IssueLineCountMismatch,
		Severity: sev,
		Message:  fmt.Sprintf("translated line count mismatch: %d/%d", translated, al.Countable),
		Lines:    append([]int(nil), al.Missing...),
	}
}

func downgrade(s internal.Status, repaired bool) internal.Status {
	if repaired && s == internal.StatusSuccess {
		return internal.StatusAutoFixed
	}
	return s
}
