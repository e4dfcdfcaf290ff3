package dateutil

import (
	"time"

	"golang.org/x/text/language"
)

// HeaderDate formats t for the document header in the given locale.
// Persian locales get the Solar Hijri calendar; every other locale gets the
// Gregorian format (a preset name or token format, DefaultDateFormat if empty).
func HeaderDate(t time.Time, locale language.Tag, format string) (string, error) {
	if base, _ := locale.Base(); base.String() == "fa" {
		return FormatJalali(t), nil
	}
	if format == "" {
		format = DefaultDateFormat
	}
	return FormatGregorian(t, format)
}
