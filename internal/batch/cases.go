// Package batch validates many stored translation responses at once.
//
// Cases come from a CSV file with the header
//
//	id,title,artist,language,original,response
//
// The original and response cells hold the text inline, or a path to a text
// file when prefixed with "@". Relative paths resolve against the CSV's
// directory.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilePrefix marks a cell whose value is a path rather than inline text.
const FilePrefix = "@"

// Columns is the required header of a cases CSV.
var Columns = []string{"id", "title", "artist", "language", "original", "response"}

var ErrMissingColumn = errors.New("cases CSV is missing a required column")

// Case is one row to validate. Err is set when its inputs could not be
// loaded; such a case is reported as an error row instead of aborting the
// batch.
type Case struct {
	ID       string
	Title    string
	Artist   string
	Language string
	Original string
	Response string
	Err      error
}

// LoadCasesFile reads cases from a CSV file.
func LoadCasesFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cases CSV: %w", err)
	}
	defer f.Close()
	return LoadCases(f, filepath.Dir(path))
}

// LoadCases parses cases from r. Column order is free; extra columns are
// ignored. A row with fewer cells than the header is malformed and fails the
// whole load.
func LoadCases(r io.Reader, baseDir string) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("cases CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var cases []Case
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}

		c := Case{
			ID:       strings.TrimSpace(rec[idx["id"]]),
			Title:    strings.TrimSpace(rec[idx["title"]]),
			Artist:   strings.TrimSpace(rec[idx["artist"]]),
			Language: strings.TrimSpace(rec[idx["language"]]),
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("%d", len(cases)+1)
		}

		var origErr, respErr error
		c.Original, origErr = resolveCell(rec[idx["original"]], baseDir)
		c.Response, respErr = resolveCell(rec[idx["response"]], baseDir)
		c.Err = errors.Join(origErr, respErr)
		cases = append(cases, c)
	}
	return cases, nil
}

func resolveCell(cell, baseDir string) (string, error) {
	if !strings.HasPrefix(cell, FilePrefix) {
		return cell, nil
	}
	path := strings.TrimSpace(strings.TrimPrefix(cell, FilePrefix))
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
