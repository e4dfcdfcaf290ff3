package assets

// defaultLoader serves the built-in assets.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in style sheet by name (without .css).
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a built-in HTML template by name (without .html).
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
