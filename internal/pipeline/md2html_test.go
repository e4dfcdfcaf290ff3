package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToFragment(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name        string
		input       string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "heading gets an id",
			input:       "# سلام دنیا",
			wantContain: []string{"<h1 id=", "سلام دنیا</h1>"},
		},
		{
			name:        "fragment has no document wrapper",
			input:       "text",
			wantContain: []string{"<p>text</p>"},
			wantAbsent:  []string{"<html", "<body", "<!DOCTYPE"},
		},
		{
			name:        "GFM table",
			input:       "| a | b |\n|---|---|\n| 1 | 2 |\n",
			wantContain: []string{"<table>", "<th>a</th>", "<td>2</td>"},
		},
		{
			name:        "fenced code is highlighted inline",
			input:       "```go\nfunc main() {}\n```\n",
			wantContain: []string{"<pre", "style=\""},
		},
		{
			name:        "highlight syntax becomes mark",
			input:       "this is ==important== text",
			wantContain: []string{"<mark>important</mark>"},
		},
		{
			name:        "raw HTML is dropped",
			input:       "<script>alert(1)</script>\n\nok",
			wantContain: []string{"<p>ok</p>"},
			wantAbsent:  []string{"<script>"},
		},
		{
			name:        "hard wraps",
			input:       "line one\nline two",
			wantContain: []string{"<br />"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToFragment(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToFragment() error = %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("ToFragment() = %q, should contain %q", got, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("ToFragment() = %q, should not contain %q", got, absent)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToFragment_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToFragment(ctx, "# title")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToFragment() error = %v, want context.Canceled", err)
	}
}
