// Package pipeline prepares content for the document shell:
//   - Markdown preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML fragment conversion via Goldmark, with Chroma
//     syntax highlighting inlined as styles
//   - style sheet sanitising before it is embedded in a <style> block
//
// Layout, pagination and printing live in the root html2pdf package.
package pipeline
