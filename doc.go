// Package cvbuilder renders résumés from a handful of free-form fields and
// exports them as PDF, print-ready HTML, standalone HTML or plain text.
//
// # Quick Start
//
// Create a builder, render a document, and close when done:
//
//	b, err := cvbuilder.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	res, err := b.Export(ctx, cvbuilder.Document{
//	    Name:    "Jane Doe",
//	    Title:   "Backend Engineer",
//	    Contact: "jane@example.com\n🔗 https://linkedin.com/in/jane",
//	    Content: "## Experience\n- Built things",
//	}, cvbuilder.ExportPDF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("cv.pdf", res.Data, 0644)
//
// # Rendering
//
// Rendering is a pure function of the Document:
//
//  1. Content and Highlights are formatted per Document.Format (html,
//     markdown or text) and sanitized to a fixed allow-list
//  2. Contact text is escaped and its e-mails, phones and profile URLs
//     become links
//  3. The fields are dispatched to one of six layout templates (classic,
//     modern, minimal, executive, sidebar, compact) with placeholders for
//     empty fields
//  4. The template's stylesheet is inlined into a self-contained page
//
// # Export
//
// PDF export waits for the page to settle, then tries each PDF engine in
// order (an installed browser via go-rod, a rod-managed Chromium, then
// chromedp). If no engine starts, or rasterizing fails, the page is opened
// in the system browser with the print dialog instead. The fallback runs
// at most once per export and is reported in ExportResult.FellBack.
//
// Only one export runs at a time per Builder. For batch work, use a
// BuilderPool:
//
//	pool := cvbuilder.NewBuilderPool(cvbuilder.ResolvePoolSize(0))
//	defer pool.Close()
//
//	b, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(b)
//
// # Custom Assets
//
// Add or override templates with a directory of the same shape as the
// embedded one:
//
//	assets/
//	├── styles/
//	│   ├── base.css
//	│   └── <key>.css
//	└── templates/
//	    └── <key>.html
//
//	b, err := cvbuilder.NewBuilder(cvbuilder.WithAssetPath("./assets"))
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The rod-managed engine downloads
// a Chromium build on first use (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary;
// both rod and chromedp honor it.
package cvbuilder
