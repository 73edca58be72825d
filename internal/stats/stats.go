// Package stats reduces many validation results into batch statistics.
package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

// Batch is a running reduction of validation results. The zero value is
// ready to use. A Batch is not safe for concurrent use; wrap it in a
// Collector or reduce per worker and Merge.
type Batch struct {
	Total          int
	Success        int
	AutoFixed      int
	Errors         int
	AvgSuccessRate float64
	AvgMissing     float64
	IssueCounts    map[internal.IssueKind]int
}

// Add folds one result into b.
func (b *Batch) Add(r validator.Result) {
	b.Total++
	switch r.Status {
	case internal.StatusSuccess:
		b.Success++
	case internal.StatusAutoFixed:
		b.AutoFixed++
	case internal.StatusError:
		b.Errors++
	}

	n := float64(b.Total)
	b.AvgSuccessRate += (r.SuccessRate() - b.AvgSuccessRate) / n
	b.AvgMissing += (float64(len(r.MissingLines)) - b.AvgMissing) / n

	if b.IssueCounts == nil {
		b.IssueCounts = make(map[internal.IssueKind]int)
	}
	for _, is := range r.Issues {
		b.IssueCounts[is.Kind]++
	}
}

// Merge folds another reduction into b. Averages are weighted by each
// side's total, so merging per-worker batches equals adding every result to
// one batch.
func (b *Batch) Merge(o Batch) {
	if o.Total == 0 {
		return
	}
	total := b.Total + o.Total
	b.AvgSuccessRate = (b.AvgSuccessRate*float64(b.Total) + o.AvgSuccessRate*float64(o.Total)) / float64(total)
	b.AvgMissing = (b.AvgMissing*float64(b.Total) + o.AvgMissing*float64(o.Total)) / float64(total)
	b.Total = total
	b.Success += o.Success
	b.AutoFixed += o.AutoFixed
	b.Errors += o.Errors

	if b.IssueCounts == nil {
		b.IssueCounts = make(map[internal.IssueKind]int, len(o.IssueCounts))
	}
	for k, c := range o.IssueCounts {
		b.IssueCounts[k] += c
	}
}

// IssueCount is one row of the issue frequency table.
type IssueCount struct {
	Kind  internal.IssueKind
	Count int
}

// TopIssues returns issue kinds ordered by count descending, then by name.
func (b Batch) TopIssues() []IssueCount {
	out := make([]IssueCount, 0, len(b.IssueCounts))
	for k, c := range b.IssueCounts {
		out = append(out, IssueCount{Kind: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func (b Batch) percent(n int) float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(n) / float64(b.Total) * 100
}

// Summary writes a human-readable report of b to w.
func (b Batch) Summary(w io.Writer) error {
	lines := []string{
		"Validation summary",
		fmt.Sprintf("  Total:       %d", b.Total),
		fmt.Sprintf("  Success:     %d (%.1f%%)", b.Success, b.percent(b.Success)),
		fmt.Sprintf("  Auto-fixed:  %d (%.1f%%)", b.AutoFixed, b.percent(b.AutoFixed)),
		fmt.Sprintf("  Errors:      %d (%.1f%%)", b.Errors, b.percent(b.Errors)),
		fmt.Sprintf("  Avg success rate:  %.1f%%", b.AvgSuccessRate*100),
		fmt.Sprintf("  Avg missing lines: %.2f", b.AvgMissing),
	}
	if top := b.TopIssues(); len(top) > 0 {
		lines = append(lines, "  Issues:")
		for _, ic := range top {
			lines = append(lines, fmt.Sprintf("    %-24s %d", ic.Kind, ic.Count))
		}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// Collector serialises updates to a shared Batch.
type Collector struct {
	mu    sync.Mutex
	batch Batch
}

// Add folds one result into the shared reduction.
func (c *Collector) Add(r validator.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch.Add(r)
}

// Merge folds a worker-local reduction into the shared one.
func (c *Collector) Merge(b Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch.Merge(b)
}

// Snapshot returns a copy of the current reduction.
func (c *Collector) Snapshot() Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.batch
	out.IssueCounts = make(map[internal.IssueKind]int, len(c.batch.IssueCounts))
	for k, v := range c.batch.IssueCounts {
		out.IssueCounts[k] = v
	}
	return out
}
