package assets

// DefaultStyleName is the name of the built-in style sheet.
const DefaultStyleName = "default"

// Template names.
const (
	// DocumentTemplate receives Dir, Lang, Title, Style, BrandText,
	// BrandLabel, BrandURL, Date and Content.
	DocumentTemplate = "document"

	// FooterTemplate receives Dir, PageLabel and OfLabel. Chrome fills the
	// pageNumber and totalPages spans at print time.
	FooterTemplate = "footer"
)
