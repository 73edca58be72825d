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
	"github.com/spf13/cobra"

	"github.com/valpere/lyricval/internal/marker"
)

var (
	encodeInput  string
	encodeOutput string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode lyrics into the line-tagged input format",
	Long: `Encode lyrics so that every line carries an index tag:

  __L0001__ >>> first line
  __L0002__ >>> [BLANK]

Example:
  lyricval encode -i lyrics.txt -o encoded.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(encodeInput)
		if err != nil {
			return err
		}
		return writeText(encodeOutput, marker.Encode(text))
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&encodeInput, "input", "i", "", "Lyrics file to encode (required)")
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "Output file (default: stdout)")
	encodeCmd.MarkFlagRequired("input")
}
