package detector

import (
	"testing"

	lingua "github.com/pemistahl/lingua-go"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only",
			text:   " \n\t",
			wantOK: false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantLang: "Ukrainian",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantLang: "German",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{name: "empty text", text: "", wantOK: false},
		{name: "english text", text: "Hello, this is a test in English.", wantCode: "en", wantOK: true},
		{name: "french text", text: "Bonjour, ceci est un test en français.", wantCode: "fr", wantOK: true},
		{name: "spanish text", text: "Hola, esto es una prueba en español.", wantCode: "es", wantOK: true},
		{name: "russian text", text: "Это тест на русском языке.", wantCode: "ru", wantOK: true},
		{name: "chinese lyrics", text: "月亮代表我的心，你问我爱你有多深", wantCode: "zh", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_DetectLines(t *testing.T) {
	d := New(lingua.English, lingua.German, lingua.Chinese)

	code, ok := d.DetectLines([]string{"[BLANK]", "", "Ich liebe dich so sehr", "  ", "Und ich werde immer bei dir sein"})
	if !ok || code != "de" {
		t.Errorf("DetectLines = %q, %v, want de", code, ok)
	}

	if _, ok := d.DetectLines([]string{"[BLANK]", ""}); ok {
		t.Error("expected no detection for blank lines")
	}
}

func TestDetector_Resolve(t *testing.T) {
	d := New(lingua.English, lingua.Chinese)
	lines := []string{"你问我爱你有多深", "我爱你有几分"}

	tests := []struct {
		lang string
		want string
	}{
		{"ja", "ja"},
		{" en ", "en"},
		{"auto", "zh"},
		{"AUTO", "zh"},
		{"", "zh"},
	}
	for _, tt := range tests {
		if got := d.Resolve(tt.lang, lines); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}

	if got := d.Resolve("auto", nil); got != "" {
		t.Errorf("Resolve(auto, nil) = %q, want empty", got)
	}
}
