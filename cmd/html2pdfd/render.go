package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage     = errors.New("invalid usage")
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF file")
)

// runRender renders one file with the same pipeline the server uses.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if f.in == "" || f.out == "" {
		return fmt.Errorf("%w: --in and --out are required", ErrUsage)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	cfg, err := loadConfig(env, fs, &f.common, &f.browser)
	if err != nil {
		return err
	}

	content, err := readInput(f.in, env.Stdin)
	if err != nil {
		return err
	}
	// Reject before a browser is resolved or launched.
	if err := html2pdf.CheckInput(content, cfg.Render.MaxHTMLBytes); err != nil {
		return err
	}

	logger := newLogger(cfg, env.Stderr)
	conv, err := newConverter(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	render := conv.Render
	if f.markdown {
		render = conv.RenderMarkdown
	}
	res, err := render(ctx, content)
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(f.out, res.PDF); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "%s (%d pages, %d bytes)\n", f.out, res.Pages, len(res.PDF))
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- path is user-provided
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}
