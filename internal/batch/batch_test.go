package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

const casesCSV = `id,title,artist,language,original,response
1,Song A,Band,en,"Hello
world","__L0001__ <<< Привіт
__L0002__ <<< світ"
2,Song B,Band,auto,"Hello
world","__L0001__ >>> Привіт
__L0002__ >>> світ"
,Song C,Solo,zh,"One
Two",
`

func TestLoadCases(t *testing.T) {
	cases, err := LoadCases(strings.NewReader(casesCSV), ".")
	if err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(cases))
	}
	if cases[0].Original != "Hello\nworld" || cases[0].Title != "Song A" {
		t.Errorf("unexpected first case %+v", cases[0])
	}
	if cases[2].ID != "3" {
		t.Errorf("expected generated id 3, got %q", cases[2].ID)
	}
	if cases[2].Response != "" || cases[2].Err != nil {
		t.Errorf("empty response is data, not a load error: %+v", cases[2])
	}
}

func TestLoadCases_ColumnOrderAndBOM(t *testing.T) {
	input := "\ufeffresponse,original,language,artist,title,id,extra\n__L0001__ <<< a,A,en,X,T,42,ignored\n"
	cases, err := LoadCases(strings.NewReader(input), ".")
	if err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
	want := []Case{{ID: "42", Title: "T", Artist: "X", Language: "en", Original: "A", Response: "__L0001__ <<< a"}}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCases_MissingColumn(t *testing.T) {
	_, err := LoadCases(strings.NewReader("id,title,artist,language,original\n1,a,b,c,d\n"), ".")
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadCases_Empty(t *testing.T) {
	if _, err := LoadCases(strings.NewReader(""), "."); err == nil {
		t.Error("expected error for empty CSV")
	}
}

func TestLoadCases_ShortRow(t *testing.T) {
	_, err := LoadCases(strings.NewReader("id,title,artist,language,original,response\n1,a\n"), ".")
	if err == nil {
		t.Error("expected error for short row")
	}
}

func TestLoadCasesFile_FileCells(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orig.txt"), []byte("A\n\nB"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "resp.txt"), []byte("__L0001__ <<< a\n__L0002__ <<< b"), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "cases.csv")
	content := "id,title,artist,language,original,response\n" +
		"1,T,A,en,@orig.txt,@resp.txt\n" +
		"2,T,A,en,@orig.txt,@gone.txt\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadCasesFile(csvPath)
	if err != nil {
		t.Fatalf("LoadCasesFile: %v", err)
	}
	if cases[0].Err != nil || cases[0].Original != "A\n\nB" {
		t.Errorf("unexpected first case %+v", cases[0])
	}
	if cases[1].Err == nil || !strings.Contains(cases[1].Err.Error(), "gone.txt") {
		t.Errorf("expected read error for gone.txt, got %v", cases[1].Err)
	}
}

type fakeResolver struct{}

func (fakeResolver) Resolve(lang string, _ []string) string {
	if lang == "auto" {
		return "en"
	}
	return lang
}

type countingObserver struct {
	mu       sync.Mutex
	observed int
	errors   int
}

func (o *countingObserver) Observe(validator.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed++
}

func (o *countingObserver) CaseError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors++
}

func manyCases(n int) []Case {
	cases := make([]Case, n)
	for i := range cases {
		cases[i] = Case{
			ID:       fmt.Sprintf("%d", i),
			Language: "auto",
			Original: "A\nB",
			Response: fmt.Sprintf("__L0001__ <<< a%d\n__L0002__ <<< b%d", i, i),
		}
		switch i % 5 {
		case 1:
			cases[i].Response = ""
		case 3:
			cases[i].Err = errors.New("failed to read missing.txt")
		}
	}
	return cases
}

func TestRunner_Run(t *testing.T) {
	v, err := validator.New()
	if err != nil {
		t.Fatal(err)
	}
	obs := &countingObserver{}
	r := NewRunner(v, WithWorkers(3), WithResolver(fakeResolver{}), WithObserver(obs))

	cases := manyCases(25)
	rows, summary, err := r.Run(context.Background(), cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != len(cases) {
		t.Fatalf("expected %d rows, got %d", len(cases), len(rows))
	}

	for i, row := range rows {
		if row.Case.ID != cases[i].ID {
			t.Fatalf("row %d has case %s, input order lost", i, row.Case.ID)
		}
		switch i % 5 {
		case 1:
			if !row.Result.HasIssue(internal.IssueEmptyResponse) {
				t.Errorf("row %d: expected empty response issue", i)
			}
		case 3:
			if row.Err == nil || row.Result.Status != internal.StatusError {
				t.Errorf("row %d: expected error row, got %+v", i, row)
			}
			if row.Language != "auto" {
				t.Errorf("row %d: unreadable cases are not detected, got %q", i, row.Language)
			}
		default:
			if row.Result.Status != internal.StatusSuccess {
				t.Errorf("row %d: Status = %s", i, row.Result.Status)
			}
			if row.Language != "en" {
				t.Errorf("row %d: Language = %q, want en", i, row.Language)
			}
			if want := fmt.Sprintf("a%d\nb%d", i, i); row.Result.CleanedText != want {
				t.Errorf("row %d: CleanedText = %q, want %q", i, row.Result.CleanedText, want)
			}
		}
	}

	if summary.Total != 25 || summary.Success != 15 || summary.Errors != 10 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if obs.observed != 25 || obs.errors != 5 {
		t.Errorf("observer saw %d rows and %d errors", obs.observed, obs.errors)
	}
}

func TestRunner_SingleWorkerMatchesParallel(t *testing.T) {
	v, _ := validator.New()
	cases := manyCases(12)

	seqRows, seqStats, err := NewRunner(v, WithWorkers(1)).Run(context.Background(), cases)
	if err != nil {
		t.Fatal(err)
	}
	parRows, parStats, err := NewRunner(v, WithWorkers(6)).Run(context.Background(), cases)
	if err != nil {
		t.Fatal(err)
	}

	if seqStats.Total != parStats.Total || seqStats.Success != parStats.Success || seqStats.Errors != parStats.Errors {
		t.Errorf("stats differ: %+v vs %+v", seqStats, parStats)
	}
	for i := range seqRows {
		if seqRows[i].Result.CleanedText != parRows[i].Result.CleanedText {
			t.Errorf("row %d differs between runs", i)
		}
	}
}

func TestRunner_Cancelled(t *testing.T) {
	v, _ := validator.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRunner(v, WithWorkers(2)).Run(ctx, manyCases(10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunner_Empty(t *testing.T) {
	v, _ := validator.New()
	rows, summary, err := NewRunner(v).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 0 || summary.Total != 0 {
		t.Errorf("expected empty output, got %d rows, %+v", len(rows), summary)
	}
}

func TestWriteRows(t *testing.T) {
	v, _ := validator.New()
	rows, _, err := NewRunner(v, WithWorkers(2)).Run(context.Background(), []Case{
		{ID: "1", Title: "T", Artist: "A", Language: "en", Original: "A\nB\nC", Response: "__L0001__ <<< a\n__L0002__ <<< b"},
		{ID: "2", Err: errors.New("failed to read x.txt")},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteRows(&buf, rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if diff := cmp.Diff(OutputColumns, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	first := records[1]
	if first[4] != "ERROR" || first[5] != "0.667" || first[8] != "2" || first[9] != "too_many_missing" {
		t.Errorf("unexpected first record %q", first)
	}
	if first[11] != "a\nb\n[MISSING: C]" {
		t.Errorf("cleaned text = %q", first[11])
	}
	second := records[2]
	if second[4] != "ERROR" || second[10] != "failed to read x.txt" {
		t.Errorf("unexpected error record %q", second)
	}
}

func TestWriteRowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteRowsFile(path, nil); err != nil {
		t.Fatalf("WriteRowsFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "id,title,artist,language,validation_status") {
		t.Errorf("unexpected file content %q", data)
	}
}
