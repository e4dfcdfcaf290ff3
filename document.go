package html2pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/alnah/go-html2pdf/internal/assets"
	"github.com/alnah/go-html2pdf/internal/dateutil"
	"github.com/alnah/go-html2pdf/internal/pipeline"
)

// DocumentSettings configures the shell placed around rendered markup.
type DocumentSettings struct {
	Locale     string         // BCP 47 tag; selects direction, calendar and footer labels
	Location   *time.Location // header date time zone; nil = time.Local
	Title      string
	BrandText  string
	BrandLabel string
	BrandURL   string // "" renders BrandLabel as plain text
	Style      string // built-in style name or path to a .css file
	DateFormat string // Gregorian preset or tokens; ignored for Persian locales
	PageSize   string // A3, A4, A5, Letter or Legal
	Margins    Margins
	AssetsDir  string // override directory for styles and templates; "" = built-in
}

// DefaultDocument returns the Persian, right-to-left A4 document.
func DefaultDocument() DocumentSettings {
	return DocumentSettings{
		Locale:     "fa-IR",
		Title:      "Generated Document",
		BrandText:  "تهیه شده در ربات تلگرام",
		BrandLabel: "@Gemini3chatbot",
		BrandURL:   "https://t.me/Gemini3chatbot",
		Style:      assets.DefaultStyleName,
		DateFormat: dateutil.DefaultDateFormat,
		PageSize:   "A4",
		Margins:    DefaultMargins,
	}
}

// rtlLanguages are written right to left.
var rtlLanguages = map[string]bool{"fa": true, "ar": true, "he": true, "ur": true}

// footerLabels surround the page number and the page count.
var footerLabels = map[string][2]string{
	"fa": {"صفحه", "از"},
	"ar": {"صفحة", "من"},
}

var defaultFooterLabels = [2]string{"Page", "of"}

// documentComposer renders the shell and the footer template.
type documentComposer struct {
	shell    *template.Template
	footer   string
	style    template.CSS
	tag      language.Tag
	dir      string
	settings DocumentSettings
}

func newDocumentComposer(s DocumentSettings) (*documentComposer, error) {
	tag, err := language.Parse(s.Locale)
	if err != nil {
		return nil, fmt.Errorf("document locale %q: %w", s.Locale, err)
	}
	base, _ := tag.Base()
	lang := base.String()

	dir := "ltr"
	if rtlLanguages[lang] {
		dir = "rtl"
	}

	loader, err := assets.NewAssetResolver(s.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	css, err := loadStyle(loader, s.Style)
	if err != nil {
		return nil, err
	}

	shellSrc, err := loader.LoadTemplate(assets.DocumentTemplate)
	if err != nil {
		return nil, err
	}
	shell, err := template.New(assets.DocumentTemplate).Parse(shellSrc)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}

	footer, err := renderFooter(loader, lang, dir)
	if err != nil {
		return nil, err
	}

	return &documentComposer{
		shell:    shell,
		footer:   footer,
		style:    template.CSS(pipeline.SanitizeCSS(css)),
		tag:      tag,
		dir:      dir,
		settings: s,
	}, nil
}

// loadStyle accepts a built-in style name or a path to a CSS file.
func loadStyle(loader assets.AssetLoader, style string) (string, error) {
	if style == "" {
		style = assets.DefaultStyleName
	}
	if strings.HasSuffix(style, ".css") || strings.ContainsRune(style, filepath.Separator) || strings.Contains(style, "/") {
		data, err := os.ReadFile(style)
		if err != nil {
			return "", fmt.Errorf("reading style %q: %w", style, err)
		}
		return string(data), nil
	}
	return loader.LoadStyle(style)
}

func renderFooter(loader assets.AssetLoader, lang, dir string) (string, error) {
	src, err := loader.LoadTemplate(assets.FooterTemplate)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(assets.FooterTemplate).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing footer template: %w", err)
	}

	labels, ok := footerLabels[lang]
	if !ok {
		labels = defaultFooterLabels
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Dir       string
		PageLabel string
		OfLabel   string
	}{dir, labels[0], labels[1]})
	if err != nil {
		return "", fmt.Errorf("rendering footer template: %w", err)
	}
	return buf.String(), nil
}

// compose wraps markup, unescaped, in the document shell dated now.
func (d *documentComposer) compose(markup string, now time.Time) (string, error) {
	loc := d.settings.Location
	if loc == nil {
		loc = time.Local
	}
	date, err := dateutil.HeaderDate(now.In(loc), d.tag, d.settings.DateFormat)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = d.shell.Execute(&buf, struct {
		Dir        string
		Lang       string
		Title      string
		Style      template.CSS
		BrandText  string
		BrandLabel string
		BrandURL   string
		Date       string
		Content    template.HTML
	}{
		Dir:        d.dir,
		Lang:       d.tag.String(),
		Title:      d.settings.Title,
		Style:      d.style,
		BrandText:  d.settings.BrandText,
		BrandLabel: d.settings.BrandLabel,
		BrandURL:   d.settings.BrandURL,
		Date:       date,
		Content:    template.HTML(markup),
	})
	if err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}
