package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	lines := []string{"A", "B"}

	m.Observe(validator.Validate("__L0001__ <<< a\n__L0002__ <<< b", lines))
	m.Observe(validator.Validate("__L0001__ >>> a\n__L0002__ >>> b", lines))
	m.Observe(validator.Validate("", lines))

	tests := []struct {
		status string
		want   float64
	}{
		{"SUCCESS", 1},
		{"AUTO_FIXED", 1},
		{"ERROR", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.validations.WithLabelValues(tt.status)); got != tt.want {
			t.Errorf("validations{status=%q} = %v, want %v", tt.status, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(m.issues.WithLabelValues("empty_response", "critical")); got != 1 {
		t.Errorf("empty response issues = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.issues.WithLabelValues("wrong_marker_direction", "warning")); got != 1 {
		t.Errorf("wrong direction issues = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.successRate); n != 1 {
		t.Errorf("success rate collectors = %d, want 1", n)
	}
}

func TestMetrics_FlaggedKinds(t *testing.T) {
	m := New()
	if n := testutil.CollectAndCount(m.flagged); n != len(internal.IssueKinds) {
		t.Fatalf("flagged series = %d, want %d", n, len(internal.IssueKinds))
	}

	// two EXTRA_CONTENT issues in one result count once
	raw := "Here is the translation:\n__L0001__ >>> a\n__L0002__ >>> b\n\nHope this helps!"
	m.Observe(validator.Validate(raw, []string{"A", "B"}))

	if got := testutil.ToFloat64(m.flagged.WithLabelValues(string(internal.IssueExtraContent))); got != 1 {
		t.Errorf("flagged{extra_content} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.flagged.WithLabelValues(string(internal.IssueInconsistentSpacing))); got != 0 {
		t.Errorf("flagged{inconsistent_spacing} = %v, want 0", got)
	}
}

func TestMetrics_CaseError(t *testing.T) {
	m := New()
	m.CaseError()
	m.CaseError()
	if got := testutil.ToFloat64(m.caseErrors); got != 2 {
		t.Errorf("case errors = %v, want 2", got)
	}
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.Observe(validator.Validate("", []string{"A"}))
	if got := testutil.ToFloat64(b.validations.WithLabelValues("ERROR")); got != 0 {
		t.Errorf("second registry observed %v, want 0", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.Observe(validator.Validate("__L0001__ <<< a", []string{"A"}))

	path := filepath.Join(t.TempDir(), "lyricval.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `lyricval_validations_total{status="SUCCESS"} 1`) {
		t.Errorf("textfile missing validation counter:\n%s", data)
	}
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	m := New()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
