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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/batch"
	"github.com/valpere/lyricval/internal/detector"
	"github.com/valpere/lyricval/internal/metrics"
)

var (
	batchInputFile   string
	batchOutputFile  string
	batchWorkers     int
	batchMode        string
	batchMetricsFile string
	batchNoStore     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Validate many stored responses from a CSV file",
	Long: `Validate every case of a CSV file and write one result row per case.

The input header must be:
  id,title,artist,language,original,response

original and response hold the text inline, or a file path prefixed with @
(relative to the CSV). A language of "auto" is detected from the lyrics.
Cases whose files cannot be read become ERROR rows.

Example:
  lyricval batch -i cases.csv -o results.csv --workers 8 --metrics-file lyricval.prom`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchInputFile == batchOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cases, err := batch.LoadCasesFile(batchInputFile)
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			return fmt.Errorf("CSV file has no cases")
		}

		v, err := newValidator(batchMode)
		if err != nil {
			return err
		}

		workers := batchWorkers
		if workers <= 0 {
			workers = cfg.Batch.Workers
		}
		m := metrics.New()
		opts := []batch.Option{
			batch.WithWorkers(workers),
			batch.WithObserver(m),
			batch.WithLogger(logger),
		}
		if needsDetection(cases) {
			opts = append(opts, batch.WithResolver(detector.New()))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		rows, summary, err := batch.NewRunner(v, opts...).Run(ctx, cases)
		if err != nil {
			return fmt.Errorf("batch interrupted: %w", err)
		}
		logger.Info("batch finished",
			zap.Int("cases", len(rows)),
			zap.Int("workers", workers),
			zap.Duration("elapsed", time.Since(start)),
		)

		if err := batch.WriteRowsFile(batchOutputFile, rows); err != nil {
			return err
		}
		if batchMetricsFile != "" {
			if err := m.WriteTextfile(batchMetricsFile); err != nil {
				return err
			}
		}

		if !batchNoStore {
			if err := recordBatch(ctx, rows); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record batch history: %v\n", err)
			}
		}

		if err := summary.Summary(os.Stdout); err != nil {
			return err
		}
		fmt.Printf("Results written to %s\n", batchOutputFile)
		return nil
	},
}

func needsDetection(cases []batch.Case) bool {
	for _, c := range cases {
		if c.Language == "" || strings.EqualFold(c.Language, detector.Auto) {
			return true
		}
	}
	return false
}

func recordBatch(ctx context.Context, rows []batch.Row) error {
	db, err := openStore(false)
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	batchID, err := db.CreateBatch(ctx, batchInputFile, batchOutputFile)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	for _, row := range rows {
		run := internal.Run{
			BatchID:    batchID,
			CaseID:     row.Case.ID,
			Title:      row.Case.Title,
			Artist:     row.Case.Artist,
			SourceText: row.Case.Original,
			SourceLang: row.Language,
			Timestamp:  time.Now(),
		}
		if _, err := db.SaveRun(ctx, run, row.Result); err != nil {
			return fmt.Errorf("failed to save case %s: %w", row.Case.ID, err)
		}
	}
	if err := db.CompleteBatch(ctx, batchID, len(rows)); err != nil {
		return fmt.Errorf("failed to complete batch: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Batch ID: %s\n", batchID)
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInputFile, "input", "i", "", "Input cases CSV (required)")
	batchCmd.Flags().StringVarP(&batchOutputFile, "output", "o", "", "Output results CSV (required)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent validations (default: batch.workers)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "Render mode: diagnostic or fallback (overrides validator.mode)")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "Do not record the results in the history database")

	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}
