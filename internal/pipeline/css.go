package pipeline

import "strings"

// SanitizeCSS escapes sequences that could close a <style> block early.
func SanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
