package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OutputColumns is the header of a results CSV.
var OutputColumns = []string{
	"id", "title", "artist", "language",
	"validation_status", "success_rate", "translated_lines", "countable_lines",
	"missing_lines", "issues", "error", "cleaned_text",
}

// WriteRowsFile writes rows as CSV to path.
func WriteRowsFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output CSV: %w", err)
	}
	if err := WriteRows(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRows writes a header and one record per row. Missing lines are
// 0-based indices joined with ";", issues are kinds joined with ";".
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		res := row.Result
		missing := make([]string, len(res.MissingLines))
		for i, m := range res.MissingLines {
			missing[i] = strconv.Itoa(m)
		}
		issues := make([]string, len(res.Issues))
		for i, is := range res.Issues {
			issues[i] = string(is.Kind)
		}
		var errText string
		if row.Err != nil {
			errText = row.Err.Error()
		}

		rec := []string{
			row.Case.ID,
			row.Case.Title,
			row.Case.Artist,
			row.Language,
			res.Status.Name(),
			strconv.FormatFloat(res.SuccessRate(), 'f', 3, 64),
			strconv.Itoa(res.TranslatedLines),
			strconv.Itoa(res.CountableLines),
			strings.Join(missing, ";"),
			strings.Join(issues, ";"),
			errText,
			res.CleanedText,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
