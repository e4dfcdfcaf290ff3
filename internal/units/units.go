// Package units converts CSS lengths and named paper sizes to the inch
// values the DevTools print command expects.
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidLength = errors.New("invalid length")
	ErrUnknownUnit   = errors.New("unsupported length unit")
	ErrUnknownPaper  = errors.New("unsupported page size")
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// Paper is a page size in inches.
type Paper struct {
	Width  float64
	Height float64
}

var papers = map[string]Paper{
	"A3":     {Width: 11.69, Height: 16.54},
	"A4":     {Width: 8.27, Height: 11.69},
	"A5":     {Width: 5.83, Height: 8.27},
	"LETTER": {Width: 8.5, Height: 11},
	"LEGAL":  {Width: 8.5, Height: 14},
}

// PaperSize looks up a named page size, case-insensitively.
func PaperSize(name string) (Paper, error) {
	p, ok := papers[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Paper{}, fmt.Errorf("%w: %q", ErrUnknownPaper, name)
	}
	return p, nil
}

// Inches parses a CSS length such as "50px", "1.5cm" or "0.5in".
// A bare number is taken as inches. Pixels use the CSS ratio of 96 per inch.
func Inches(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, value)
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, value)
	}

	switch unit := strings.ToLower(matches[2]); unit {
	case "", "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}
