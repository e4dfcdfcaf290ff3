// Package assets provides the style sheet and HTML templates that wrap a
// rendered fragment into a printable document.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from an override directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is what the converter uses. An override directory only needs
// the files it changes; everything else falls back to the embedded copy.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # document style sheet (default.css)
//	└── templates/
//	    ├── document.html        # page shell: header, date, content region
//	    └── footer.html          # printed footer with page counters
//
// Templates use html/template syntax. See DocumentTemplate and
// FooterTemplate for the fields each one receives.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
