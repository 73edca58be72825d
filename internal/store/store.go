package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- batches tracks one CSV batch run
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		status TEXT DEFAULT 'running',
		total INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS validation_runs (
		id TEXT PRIMARY KEY,
		batch_id TEXT,
		case_id TEXT,
		title TEXT,
		artist TEXT,
		source_text TEXT NOT NULL,
		source_lang TEXT,
		target_lang TEXT,
		style TEXT,
		model TEXT,
		status TEXT NOT NULL,
		success_rate REAL NOT NULL,
		translated INTEGER NOT NULL,
		countable INTEGER NOT NULL,
		report TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (batch_id) REFERENCES batches(id)
	);

	-- response_cache keeps raw model responses so re-validation needs no new request
	CREATE TABLE IF NOT EXISTS response_cache (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		style TEXT NOT NULL,
		model TEXT NOT NULL,
		response TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, target_lang, style, model)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_batch ON validation_runs(batch_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON validation_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_cache_lookup ON response_cache(source_text, target_lang, style, model);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RunRecord is a row from the validation_runs table.
type RunRecord struct {
	internal.Run
	Status          string
	SuccessRate     float64
	TranslatedLines int
	CountableLines  int
	Report          validator.Report
}

// SaveRun records a validated translation and returns its id. A run
// without an id gets a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, run internal.Run, res validator.Result) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	report, err := json.Marshal(res.Report())
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, batch_id, case_id, title, artist, source_text, source_lang, target_lang, style, model, status, success_rate, translated, countable, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, nullable(run.BatchID), run.CaseID, run.Title, run.Artist, normalizeText(run.SourceText),
		run.SourceLang, run.TargetLang, run.Style, run.Model,
		res.Status.Name(), res.SuccessRate(), res.TranslatedLines, res.CountableLines, string(report), run.Timestamp)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

const runColumns = `id, COALESCE(batch_id, ''), case_id, title, artist, source_text, source_lang, target_lang, style, model, status, success_rate, translated, countable, report, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunRecord, error) {
	var r RunRecord
	var report string
	if err := sc.Scan(&r.ID, &r.BatchID, &r.CaseID, &r.Title, &r.Artist, &r.SourceText, &r.SourceLang, &r.TargetLang,
		&r.Style, &r.Model, &r.Status, &r.SuccessRate, &r.TranslatedLines, &r.CountableLines, &report, &r.Timestamp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(report), &r.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report of run %s: %w", r.ID, err)
	}
	return &r, nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM validation_runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return r, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM validation_runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

// RunStats summarises the stored history.
type RunStats struct {
	TotalRuns      int
	Success        int
	AutoFixed      int
	Errors         int
	AvgSuccessRate float64
	Batches        int
	CachedReplies  int
}

// Stats returns summary statistics for the run history.
func (s *Store) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'AUTO_FIXED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'ERROR' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(success_rate), 0)
		FROM validation_runs`).Scan(
		&stats.TotalRuns,
		&stats.Success,
		&stats.AutoFixed,
		&stats.Errors,
		&stats.AvgSuccessRate,
	)
	if err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&stats.Batches); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response_cache`).Scan(&stats.CachedReplies); err != nil {
		return nil, err
	}
	return stats, nil
}

// ClearRuns removes all runs and batches and returns the number of runs removed.
func (s *Store) ClearRuns(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM validation_runs`)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Batch is a row from the batches table.
type Batch struct {
	ID         string
	InputFile  string
	OutputFile string
	Status     string
	Total      int
	CreatedAt  time.Time
}

// CreateBatch creates a running batch record and returns its id.
func (s *Store) CreateBatch(ctx context.Context, inputFile, outputFile string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (id, input_file, output_file) VALUES (?, ?, ?)`,
		id, inputFile, outputFile)
	return id, err
}

// GetBatch retrieves a batch by id.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	var b Batch
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_file, output_file, status, total, created_at FROM batches WHERE id = ?`,
		id).Scan(&b.ID, &b.InputFile, &b.OutputFile, &b.Status, &b.Total, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("batch not found: %s", id)
	}
	return &b, err
}

// CompleteBatch marks a batch as completed with total processed rows.
func (s *Store) CompleteBatch(ctx context.Context, id string, total int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE batches SET status = 'completed', total = ?, updated_at = ? WHERE id = ?`,
		total, time.Now(), id)
	return err
}

// GetCachedResponse returns a stored raw model response for the same lyrics,
// target language, style and model.
func (s *Store) GetCachedResponse(ctx context.Context, sourceText, targetLang, style, model string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		`SELECT response FROM response_cache WHERE source_text = ? AND target_lang = ? AND style = ? AND model = ?`,
		normalizeText(sourceText), targetLang, style, model).Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE response_cache SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND target_lang = ? AND style = ? AND model = ?`,
		time.Now(), normalizeText(sourceText), targetLang, style, model)

	return response, true, err
}

// SaveResponse stores or replaces a raw model response.
func (s *Store) SaveResponse(ctx context.Context, sourceText, targetLang, style, model, response string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO response_cache (id, source_text, target_lang, style, model, response, usage_count, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		uuid.New().String(), normalizeText(sourceText), targetLang, style, model, response, time.Now(), time.Now())
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
