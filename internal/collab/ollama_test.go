package collab

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, nil)

	if c.baseURL != DefaultURL {
		t.Errorf("expected baseURL %q, got %q", DefaultURL, c.baseURL)
	}
	if c.Model() != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, c.Model())
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, c.client.Timeout)
	}
	if c.log == nil {
		t.Error("expected non-nil logger")
	}
}

func TestClient_Translate(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "__L0001__ <<< Привіт"})
	}))
	defer server.Close()

	c := New(Config{URL: server.URL + "/", Model: "qwen2.5:3b", Timeout: 5 * time.Second}, nil)
	resp, err := c.Translate(context.Background(), Request{Lyrics: "Hello\n\nworld", TargetLang: "Ukrainian", Style: StyleMachineClassic})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Raw != "__L0001__ <<< Привіт" {
		t.Errorf("Raw = %q", resp.Raw)
	}
	if resp.Model != "qwen2.5:3b" {
		t.Errorf("Model = %q", resp.Model)
	}
	if got["model"] != "qwen2.5:3b" || got["stream"] != false {
		t.Errorf("unexpected request body %v", got)
	}
	prompt, _ := got["prompt"].(string)
	for _, want := range []string{"__L0001__ >>> Hello", "__L0002__ >>> [BLANK]", "__L0003__ >>> world", "Ukrainian", "literally"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestClient_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	c := New(Config{URL: server.URL}, nil)
	_, err := c.Translate(context.Background(), Request{Lyrics: "Hello", TargetLang: "uk"})
	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestClient_Translate_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := New(Config{URL: server.URL}, nil)
	if _, err := c.Translate(context.Background(), Request{Lyrics: "Hello"}); err == nil {
		t.Error("expected decode error")
	}
}

func TestClient_Translate_UnknownStyle(t *testing.T) {
	c := New(Config{URL: "http://127.0.0.1:1"}, nil)
	_, err := c.Translate(context.Background(), Request{Lyrics: "Hello", Style: "jazz"})
	if !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestClient_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	if err := New(Config{URL: server.URL}, nil).IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := New(Config{URL: "http://127.0.0.1:1"}, nil).IsAvailable(context.Background()); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    Style
		wantErr bool
	}{
		{"faithful", StyleFaithful, false},
		{" Melodramatic_Poet ", StyleMelodramaticPoet, false},
		{"machine_classic", StyleMachineClassic, false},
		{"", StyleFaithful, false},
		{"1", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStyle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrompt(t *testing.T) {
	for _, st := range []Style{StyleFaithful, StyleMelodramaticPoet, StyleMachineClassic} {
		p, err := Prompt(st, "__L0001__ >>> a", "French")
		if err != nil {
			t.Fatalf("Prompt(%s): %v", st, err)
		}
		if !strings.Contains(p, "French") || !strings.Contains(p, "__L0001__ >>> a") || !strings.Contains(p, "<<<") {
			t.Errorf("Prompt(%s) is missing required parts:\n%s", st, p)
		}
		if strings.Contains(p, "%!") {
			t.Errorf("Prompt(%s) has a formatting error:\n%s", st, p)
		}
	}
}
