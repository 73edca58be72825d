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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/render"
)

var (
	validateOriginal  string
	validateResponse  string
	validateOutput    string
	validateMode      string
	validateJSON      string
	validatePlaintext string
	validatePreview   int
	validateStrict    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a model response against the original lyrics",
	Long: `Validate a line-tagged model response against the original lyrics.

The summary goes to stderr. The cleaned text is written with -o, the JSON
report with --json, and a marker-free plain text with --plaintext.

Render modes:
  diagnostic  countable lines only, untranslated lines as [MISSING: ...]
  fallback    every original line, untranslated lines kept in the original

Example:
  lyricval validate -i lyrics.txt -r response.txt -o cleaned.txt --json report.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := readText(validateOriginal)
		if err != nil {
			return err
		}
		response, err := readText(validateResponse)
		if err != nil {
			return err
		}

		v, err := newValidator(validateMode)
		if err != nil {
			return err
		}

		res := v.ValidateText(response, original)
		logger.Debug("validated response",
			zap.String("original", validateOriginal),
			zap.String("response", validateResponse),
			zap.String("status", res.Status.Name()),
		)

		printResult(os.Stderr, res, validatePreview)

		if validateOutput != "" {
			if err := writeText(validateOutput, res.CleanedText); err != nil {
				return err
			}
		}
		if validatePlaintext != "" {
			if err := writeText(validatePlaintext, render.Plaintext(res.CleanedText)); err != nil {
				return err
			}
		}
		if validateJSON != "" {
			data, err := json.MarshalIndent(res.Report(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			if err := writeText(validateJSON, string(data)); err != nil {
				return err
			}
		}

		if validateStrict && res.Status == internal.StatusError {
			return fmt.Errorf("validation failed with %d issues", len(res.Issues))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateOriginal, "input", "i", "", "Original lyrics file (required)")
	validateCmd.Flags().StringVarP(&validateResponse, "response", "r", "", "Model response file (required)")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Write the cleaned text to this file (- for stdout)")
	validateCmd.Flags().StringVar(&validateMode, "mode", "", "Render mode: diagnostic or fallback (overrides validator.mode)")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Write the JSON report to this file (- for stdout)")
	validateCmd.Flags().StringVar(&validatePlaintext, "plaintext", "", "Write the cleaned text without markers to this file")
	validateCmd.Flags().IntVar(&validatePreview, "preview", 5, "Number of cleaned lines to preview (0 to hide)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit with an error when the status is ERROR")

	validateCmd.MarkFlagRequired("input")
	validateCmd.MarkFlagRequired("response")
}
