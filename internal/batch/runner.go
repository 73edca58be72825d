package batch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/marker"
	"github.com/valpere/lyricval/internal/stats"
	"github.com/valpere/lyricval/internal/validator"
)

// DefaultWorkers is the number of concurrent validations.
const DefaultWorkers = 4

// LanguageResolver fills in the language of cases marked "auto".
type LanguageResolver interface {
	Resolve(lang string, lines []string) string
}

// Observer receives every row as it completes.
type Observer interface {
	Observe(validator.Result)
	CaseError()
}

// Row is the outcome of one case. Err is non-nil for cases whose inputs
// could not be loaded; their Result is a bare ERROR.
type Row struct {
	Case     Case
	Language string
	Result   validator.Result
	Err      error
}

// Runner validates cases on a bounded pool of workers.
type Runner struct {
	validator *validator.Validator
	workers   int
	resolver  LanguageResolver
	observer  Observer
	log       *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker count; values below 1 keep DefaultWorkers.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithResolver resolves empty or auto case languages from the lyrics.
func WithResolver(lr LanguageResolver) Option {
	return func(r *Runner) { r.resolver = lr }
}

// WithObserver reports every finished row to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRunner creates a Runner validating with v.
func NewRunner(v *validator.Validator, opts ...Option) *Runner {
	r := &Runner{
		validator: v,
		workers:   DefaultWorkers,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates all cases on a bounded pool of workers. Rows are returned in
// input order. Each worker reduces into its own stats.Batch; the partial
// batches are merged once the worker finishes. Run only fails when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, cases []Case) ([]Row, stats.Batch, error) {
	rows := make([]Row, len(cases))
	var collector stats.Collector

	jobs := make(chan int)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range cases {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < r.workers; w++ {
		g.Go(func() error {
			var local stats.Batch
			defer func() { collector.Merge(local) }()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				rows[i] = r.runCase(cases[i])
				local.Add(rows[i].Result)
				r.notify(rows[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats.Batch{}, err
	}
	return rows, collector.Snapshot(), nil
}

func (r *Runner) runCase(c Case) Row {
	row := Row{Case: c, Language: c.Language}
	if c.Err != nil {
		r.log.Warn("case inputs unreadable", zap.String("id", c.ID), zap.Error(c.Err))
		row.Err = c.Err
		row.Result = validator.Result{
			Status: internal.StatusError,
			Lines:  map[int]internal.TranslationLine{},
		}
		return row
	}

	lines := marker.SplitLines(c.Original)
	if r.resolver != nil {
		row.Language = r.resolver.Resolve(c.Language, lines)
	}
	row.Result = r.validator.Validate(c.Response, lines)
	r.log.Debug("case validated",
		zap.String("id", c.ID),
		zap.String("language", row.Language),
		zap.String("status", row.Result.Status.Name()),
		zap.Float64("success_rate", row.Result.SuccessRate()),
	)
	return row
}

func (r *Runner) notify(row Row) {
	if r.observer == nil {
		return
	}
	if row.Err != nil {
		r.observer.CaseError()
	}
	r.observer.Observe(row.Result)
}
