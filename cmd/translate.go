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
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/collab"
	"github.com/valpere/lyricval/internal/detector"
	"github.com/valpere/lyricval/internal/marker"
	"github.com/valpere/lyricval/internal/store"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	style      string
	model      string
	renderMode string
	noCache    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate lyrics with Ollama and validate the response",
	Long: `Encode the lyrics, ask a local Ollama model to translate them line by line,
validate and repair the response, and write the cleaned translation.

Styles:
  - faithful           meaning and feeling of the original (default)
  - melodramatic_poet  poetic, dramatic rendering
  - machine_classic    literal, line-by-line rendering

Raw responses are cached in the history database; use --no-cache to ask
the model again.

Example:
  lyricval translate -i lyrics.txt -t Ukrainian --style melodramatic_poet -o out.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		lyrics, err := readText(inputFile)
		if err != nil {
			return err
		}
		st, err := collab.ParseStyle(style)
		if err != nil {
			return err
		}

		v, err := newValidator(renderMode)
		if err != nil {
			return err
		}

		lines := marker.SplitLines(lyrics)
		srcLang := sourceLang
		if srcLang == detector.Auto {
			if srcLang = detector.New().Resolve(srcLang, lines); srcLang != "" {
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", srcLang)
			}
		}

		ollamaCfg := cfg.Ollama
		if model != "" {
			ollamaCfg.Model = model
		}
		client := collab.New(ollamaCfg, logger)

		ctx := context.Background()

		db, err := openStore(false)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		raw, cached, err := fetchResponse(ctx, db, client, lyrics, st)
		if err != nil {
			return err
		}

		res := v.Validate(raw, lines)
		printResult(os.Stderr, res, 0)

		if db != nil {
			if !cached && res.Status != internal.StatusError {
				if err := db.SaveResponse(ctx, lyrics, targetLang, string(st), client.Model(), raw); err != nil {
					logger.Warn("failed to cache response", zap.Error(err))
				}
			}
			run := internal.Run{
				SourceText: lyrics,
				SourceLang: srcLang,
				TargetLang: targetLang,
				Style:      string(st),
				Model:      client.Model(),
				Timestamp:  time.Now(),
			}
			if id, err := db.SaveRun(ctx, run, res); err != nil {
				logger.Warn("failed to record run", zap.Error(err))
			} else {
				logger.Debug("run recorded", zap.String("id", id))
			}
		}

		if outputFile != "" && outputFile != "-" {
			if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := writeText(outputFile, res.CleanedText); err != nil {
			return err
		}

		if res.Status == internal.StatusError {
			return fmt.Errorf("translation did not pass validation")
		}
		return nil
	},
}

// fetchResponse returns a cached raw response when allowed, otherwise asks
// the model.
func fetchResponse(ctx context.Context, db *store.Store, client *collab.Client, lyrics string, st collab.Style) (string, bool, error) {
	if db != nil && !noCache {
		raw, found, err := db.GetCachedResponse(ctx, lyrics, targetLang, string(st), client.Model())
		if err != nil {
			logger.Warn("cache lookup failed", zap.Error(err))
		} else if found {
			fmt.Fprintf(os.Stderr, "Using cached response\n")
			return raw, true, nil
		}
	}

	resp, err := client.Translate(ctx, collab.Request{Lyrics: lyrics, TargetLang: targetLang, Style: st})
	if err != nil {
		return "", false, fmt.Errorf("failed to translate: %w", err)
	}
	logger.Info("model answered", zap.String("model", resp.Model), zap.Duration("latency", resp.Latency))
	return resp.Raw, false, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Lyrics file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the cleaned translation (default: stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language (required)")
	translateCmd.Flags().StringVar(&style, "style", string(collab.StyleFaithful), "Translation style")
	translateCmd.Flags().StringVar(&model, "model", "", "Ollama model (overrides ollama.model)")
	translateCmd.Flags().StringVar(&renderMode, "mode", "", "Render mode: diagnostic or fallback (overrides validator.mode)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached responses")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("target")
}
