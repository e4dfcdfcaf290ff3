package html2pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func TestDocumentComposer_Compose(t *testing.T) {
	t.Parallel()

	english := DefaultDocument()
	english.Locale = "en-US"
	english.BrandURL = ""
	english.BrandLabel = "Docs Bot"
	english.Location = time.UTC

	persian := DefaultDocument()
	persian.Location = time.UTC

	tests := []struct {
		name     string
		settings DocumentSettings
		markup   string
		want     []string
		notWant  []string
	}{
		{
			name:     "persian shell is right to left with solar hijri date",
			settings: persian,
			markup:   `<p class="x">متن</p><script>window.addPageNumbers = () => {}</script>`,
			want: []string{
				`<html dir="rtl" lang="fa-IR">`,
				"۲۶ مهر ۱۴۰۵",
				`<a href="https://t.me/Gemini3chatbot">@Gemini3chatbot</a>`,
				`<p class="x">متن</p><script>window.addPageNumbers = () => {}</script>`,
				"font-family: 'Vazirmatn'",
			},
		},
		{
			name:     "other locales are left to right with gregorian date",
			settings: english,
			markup:   "<p>hello</p>",
			want:     []string{`<html dir="ltr" lang="en-US">`, "October 18, 2026", "Docs Bot"},
			notWant:  []string{"<a href"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := newDocumentComposer(tt.settings)
			if err != nil {
				t.Fatalf("newDocumentComposer() unexpected error: %v", err)
			}
			doc, err := d.compose(tt.markup, testNow)
			if err != nil {
				t.Fatalf("compose() unexpected error: %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(doc, s) {
					t.Errorf("document missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(doc, s) {
					t.Errorf("document unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestDocumentComposer_Footer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		locale string
		want   []string
	}{
		{"fa-IR", []string{`dir="rtl"`, "صفحه", "از"}},
		{"ar", []string{`dir="rtl"`, "صفحة", "من"}},
		{"en", []string{`dir="ltr"`, "Page", "of"}},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			t.Parallel()

			s := DefaultDocument()
			s.Locale = tt.locale
			d, err := newDocumentComposer(s)
			if err != nil {
				t.Fatalf("newDocumentComposer() unexpected error: %v", err)
			}
			for _, want := range append(tt.want, `class="pageNumber"`, `class="totalPages"`) {
				if !strings.Contains(d.footer, want) {
					t.Errorf("footer missing %q", want)
				}
			}
		})
	}
}

func TestDocumentComposer_StyleSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cssPath := filepath.Join(dir, "brand.css")
	if err := os.WriteFile(cssPath, []byte("body { color: red } </style><script>"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := DefaultDocument()
	s.Style = cssPath
	d, err := newDocumentComposer(s)
	if err != nil {
		t.Fatalf("newDocumentComposer() unexpected error: %v", err)
	}
	doc, err := d.compose("<p>x</p>", testNow)
	if err != nil {
		t.Fatalf("compose() unexpected error: %v", err)
	}
	if !strings.Contains(doc, "body { color: red }") {
		t.Error("custom style sheet not embedded")
	}
	if strings.Contains(doc, "</style><script>") {
		t.Error("style sheet closed the style element early")
	}
}

func TestDocumentComposer_AssetsOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	shell := `<html dir="{{.Dir}}"><body data-date="{{.Date}}">{{.Content}}</body></html>`
	if err := os.WriteFile(filepath.Join(dir, "templates", "document.html"), []byte(shell), 0o644); err != nil {
		t.Fatal(err)
	}

	s := DefaultDocument()
	s.AssetsDir = dir
	d, err := newDocumentComposer(s)
	if err != nil {
		t.Fatalf("newDocumentComposer() unexpected error: %v", err)
	}
	doc, err := d.compose("<b>x</b>", testNow)
	if err != nil {
		t.Fatalf("compose() unexpected error: %v", err)
	}
	if !strings.HasPrefix(doc, `<html dir="rtl"><body data-date=`) || !strings.Contains(doc, "<b>x</b>") {
		t.Errorf("override template not used: %s", doc)
	}
	// The footer still comes from the built-in assets.
	if !strings.Contains(d.footer, "صفحه") {
		t.Error("footer fallback missing")
	}
}
