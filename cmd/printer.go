/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	fixedColor   = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func statusStyle(s internal.Status) (string, *color.Color) {
	switch s {
	case internal.StatusSuccess:
		return "✓", successColor
	case internal.StatusAutoFixed:
		return "⚠", fixedColor
	case internal.StatusError:
		return "✗", errorColor
	}
	return "•", dimColor
}

func severityColor(s internal.Severity) *color.Color {
	switch s {
	case internal.SeverityCritical:
		return errorColor
	case internal.SeverityWarning:
		return fixedColor
	}
	return dimColor
}

// printResult writes a human-readable summary of res. preview limits the
// number of cleaned text lines shown; 0 hides the preview.
func printResult(w io.Writer, res validator.Result, preview int) {
	symbol, c := statusStyle(res.Status)
	c.Fprintf(w, "%s %s\n", symbol, res.Status.Name())

	fmt.Fprintf(w, "  Success rate: %.1f%% (%d/%d lines)\n",
		res.SuccessRate()*100, res.TranslatedLines, res.CountableLines)

	if len(res.MissingLines) > 0 {
		missing := make([]string, len(res.MissingLines))
		for i, m := range res.MissingLines {
			missing[i] = fmt.Sprintf("%d", m+1)
		}
		fmt.Fprintf(w, "  Missing lines: %s\n", strings.Join(missing, ", "))
	}

	if len(res.Issues) > 0 {
		fmt.Fprintln(w, "  Issues:")
		for _, is := range res.Issues {
			fix := ""
			if is.AutoFixable {
				fix = " (fixed)"
			}
			fmt.Fprint(w, "    ")
			severityColor(is.Severity).Fprintf(w, "[%s]", is.Severity)
			fmt.Fprintf(w, " %s: %s%s\n", is.Kind, is.Message, fix)
		}
	}

	if preview <= 0 || res.CleanedText == "" {
		return
	}
	lines := strings.Split(res.CleanedText, "\n")
	fmt.Fprintln(w, "  Preview:")
	for i, l := range lines {
		if i == preview {
			dimColor.Fprintf(w, "    ... %d more lines\n", len(lines)-preview)
			break
		}
		fmt.Fprintf(w, "    %s\n", l)
	}
}
