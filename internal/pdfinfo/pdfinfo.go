// Package pdfinfo checks that exported bytes are a readable PDF document and
// reports its page count.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrEmpty        = errors.New("empty PDF")
	ErrNotPDF       = errors.New("missing %PDF- signature")
	ErrUnreadable   = errors.New("unreadable PDF structure")
	ErrNoPages      = errors.New("PDF has no pages")
	signaturePrefix = []byte("%PDF-")
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// Inspect verifies the signature and structure of pdf and returns its page
// count. Validation is relaxed: browser output is trusted to be well formed,
// only truncation or corruption is caught.
func Inspect(pdf []byte) (int, error) {
	if len(pdf) == 0 {
		return 0, ErrEmpty
	}
	if !bytes.HasPrefix(pdf, signaturePrefix) {
		return 0, ErrNotPDF
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if pages < 1 {
		return 0, ErrNoPages
	}
	return pages, nil
}
