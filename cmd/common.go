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
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/lyricval/internal/store"
	"github.com/valpere/lyricval/internal/validator"
)

// readText reads a whole input file.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// writeText writes text to path, or to stdout when path is empty or "-".
func writeText(path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// openStore opens the history database. It returns nil without error when
// the store is disabled, unless force is set.
func openStore(force bool) (*store.Store, error) {
	if !cfg.Store.Enabled && !force {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Store.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newValidator builds the validator from config, with mode overriding
// validator.mode when set.
func newValidator(mode string) (*validator.Validator, error) {
	if mode != "" {
		cfg.Validator.Mode = mode
	}
	v, err := cfg.NewValidator(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure validator: %w", err)
	}
	return v, nil
}
