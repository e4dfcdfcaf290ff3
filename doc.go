// Package html2pdf renders HTML fragments to paginated PDF documents using a
// shared headless Chrome process.
//
// # Quick Start
//
// Create a converter, render markup, and close when done:
//
//	conv, err := html2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Render(ctx, "<h1>سلام</h1><p>Hello</p>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// # Render Pipeline
//
// Each call to Render runs these stages:
//
//  1. Acquire the shared browser, launching it on first use
//  2. Open a page session
//  3. Compose the document shell (style sheet, branded header, content region)
//  4. Load it and wait for network-idle quiescence
//  5. Invoke the window.addPageNumbers hook when the document defines one
//  6. Print to PDF with a fixed page geometry and a "page N of M" footer
//  7. Close the page session
//
// A failure in stages 2 to 6 destroys the browser process so the next
// request starts from a fresh one. The page is not closed on that path.
//
// # Browser Lifecycle
//
// At most one browser process is live at a time. Concurrent first requests
// share a single launch. In production (WithProduction(true)) the process is
// torn down after every request; elsewhere it is reused until an error occurs.
// WithIsolation overrides that policy.
//
// # Executable Discovery
//
// The Locator resolves the browser binary once per process lifetime:
//
//   - an explicit path (WithExecutable, ROD_BROWSER_BIN) when set
//   - well-known install paths for Windows or Unix/macOS (development only)
//   - the PATH (development only)
//   - a managed Chromium download, into WithManagedDir in production or
//     WithCacheDir in development
//
// # Engines
//
// The default engine drives Chrome through go-rod. WithEngine("chromedp")
// selects a chromedp-based driver with the same behavior.
package html2pdf
