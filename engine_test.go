package html2pdf

import (
	"errors"
	"math"
	"testing"
)

func TestSplitFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg       string
		wantName  string
		wantValue string
		wantOK    bool
	}{
		{"--no-sandbox", "no-sandbox", "", true},
		{"--font-render-hinting=medium", "font-render-hinting", "medium", true},
		{"  --lang=fa-IR ", "lang", "fa-IR", true},
		{"--proxy-server=http://a:8080", "proxy-server", "http://a:8080", true},
		{"--", "", "", false},
		{"", "", "", false},
		{"--=x", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()

			name, value, ok := splitFlag(tt.arg)
			if name != tt.wantName || value != tt.wantValue || ok != tt.wantOK {
				t.Errorf("splitFlag(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.arg, name, value, ok, tt.wantName, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestNewPrintOptions(t *testing.T) {
	t.Parallel()

	opts, err := newPrintOptions("a4", DefaultMargins, "<div>footer</div>")
	if err != nil {
		t.Fatalf("newPrintOptions() unexpected error: %v", err)
	}

	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	checks := []struct {
		name      string
		got, want float64
	}{
		{"width", opts.PaperWidth, 8.27},
		{"height", opts.PaperHeight, 11.69},
		{"top", opts.MarginTop, 50.0 / 96},
		{"right", opts.MarginRight, 30.0 / 96},
		{"bottom", opts.MarginBottom, 80.0 / 96},
		{"left", opts.MarginLeft, 30.0 / 96},
	}
	for _, c := range checks {
		if !near(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if opts.FooterTemplate != "<div>footer</div>" || opts.HeaderTemplate != emptyHeaderTemplate {
		t.Errorf("templates = %q / %q", opts.HeaderTemplate, opts.FooterTemplate)
	}
}

func TestNewPrintOptions_Errors(t *testing.T) {
	t.Parallel()

	if _, err := newPrintOptions("tabloid", DefaultMargins, ""); err == nil {
		t.Error("newPrintOptions() accepted an unknown page size")
	}
	m := DefaultMargins
	m.Left = "3em"
	if _, err := newPrintOptions("A4", m, ""); err == nil {
		t.Error("newPrintOptions() accepted an unsupported margin unit")
	}
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wantName string
		wantErr  error
	}{
		{name: "", wantName: EngineRod},
		{name: EngineRod, wantName: EngineRod},
		{name: EngineChromedp, wantName: EngineChromedp},
		{name: "playwright", wantErr: ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng, err := newEngine(tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("newEngine(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("newEngine(%q) unexpected error: %v", tt.name, err)
			}
			if eng.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", eng.Name(), tt.wantName)
			}
		})
	}
}

func TestAllocatorOptionsFromArgs(t *testing.T) {
	t.Parallel()

	got := allocatorOptionsFromArgs([]string{"--no-sandbox", "", "--lang=fa"})
	if len(got) != 2 {
		t.Errorf("allocatorOptionsFromArgs() returned %d options, want 2", len(got))
	}
}
