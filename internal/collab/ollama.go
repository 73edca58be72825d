// Package collab asks a local Ollama model to translate encoded lyrics and
// returns its raw, unvalidated response.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/lyricval/internal/marker"
)

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Style selects the translation register requested from the model.
type Style string

const (
	StyleFaithful         Style = "faithful"
	StyleMelodramaticPoet Style = "melodramatic_poet"
	StyleMachineClassic   Style = "machine_classic"
)

var ErrUnknownStyle = errors.New("unknown translation style")

func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleFaithful, StyleMelodramaticPoet, StyleMachineClassic:
		return st, nil
	case "":
		return StyleFaithful, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// Config holds the Ollama connection settings.
type Config struct {
	URL     string        `mapstructure:"url" json:"url"`
	Model   string        `mapstructure:"model" json:"model"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

type Client struct {
	baseURL string
	model   string
	client  *http.Client
	log     *zap.Logger
}

// New creates a client. Empty config fields fall back to the defaults.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Request is one lyrics translation job.
type Request struct {
	Lyrics     string
	TargetLang string
	Style      Style
}

// Response is the model's raw output.
type Response struct {
	Raw     string
	Model   string
	Latency time.Duration
}

// Translate encodes the lyrics, sends the prompt and returns the raw reply.
func (c *Client) Translate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	prompt, err := Prompt(req.Style, marker.Encode(req.Lyrics), req.TargetLang)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	latency := time.Since(start)
	c.log.Debug("ollama translation finished",
		zap.String("model", c.model),
		zap.String("style", string(req.Style)),
		zap.Duration("latency", latency),
		zap.Int("bytes", len(out.Response)),
	)
	return &Response{Raw: out.Response, Model: c.model, Latency: latency}, nil
}

// IsAvailable checks that the Ollama server answers.
func (c *Client) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}
