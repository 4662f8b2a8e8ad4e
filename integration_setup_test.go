//go:build integration

package cvbuilder

// Notes:
// - integration tests drive a real Chrome or Chromium and produce real PDFs
// - the local engines need a browser on the machine (or ROD_BROWSER_BIN);
//   the managed rod engine downloads one on first run
// - every engine is closed with t.Cleanup so no browser outlives its test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// integrationTimeout bounds one browser start plus one PDF.
const integrationTimeout = 90 * time.Second

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// requireBrowser skips the test when no local browser can be found.
func requireBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv("ROD_BROWSER_BIN") != "" {
		return
	}
	if _, found := launcher.LookPath(); !found {
		t.Skip("no local Chrome or Chromium; set ROD_BROWSER_BIN to run")
	}
}

// startEngine returns e, closed when the test ends.
func startEngine(t *testing.T, e Rasterizer) Rasterizer {
	t.Helper()
	t.Cleanup(func() {
		if c, ok := e.(io.Closer); ok {
			_ = c.Close()
		}
	})
	return e
}

// renderSample renders sampleDocument with the default template.
func renderSample(t *testing.T) (Document, string) {
	t.Helper()

	doc := sampleDocument()
	b := newTestBuilder(t, nil)
	html, err := b.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return doc, html
}

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

// assertPDFShowsDocument checks the PDF is readable and carries doc's name.
func assertPDFShowsDocument(t *testing.T, data []byte, doc Document) {
	t.Helper()

	assertValidPDF(t, data)
	if err := VerifyPDF(data, doc.Name); err != nil {
		t.Errorf("VerifyPDF() error = %v", err)
	}
}
