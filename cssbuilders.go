package cvbuilder

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// defaultFontFamily is the font stack for the PDF footer.
const defaultFontFamily = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif`

// footerMargin is the bottom margin in inches when a footer is printed.
const footerMargin = 0.6

// printDelay is how long the print page waits after load before opening
// the print dialog, so photos finish decoding.
const printDelay = 500

// pdfParams is the engine-neutral form of a print-to-PDF call.
type pdfParams struct {
	width, height float64
	marginTop     float64
	marginBottom  float64
	marginSide    float64
	footer        string // Chrome footer template, empty = none
}

// newPDFParams resolves page settings (nil = defaults) into PDF parameters.
func newPDFParams(page *PageSettings) pdfParams {
	if page == nil {
		page = DefaultPageSettings()
	}
	w, h := page.Dimensions()
	p := pdfParams{
		width:        w,
		height:       h,
		marginTop:    page.Margin,
		marginBottom: page.Margin,
		marginSide:   page.Margin,
	}
	if tmpl := buildFooterTemplate(page.Footer, page.Margin); tmpl != "" {
		p.footer = tmpl
		p.marginBottom = max(page.Margin, footerMargin)
	}
	return p
}

// buildFooterTemplate generates the HTML for Chrome's native footer. The
// pageNumber and totalPages classes are filled in by Chrome.
func buildFooterTemplate(f *Footer, sideMargin float64) string {
	if f == nil {
		return ""
	}

	var parts []string
	if f.Updated != "" {
		parts = append(parts, "Updated "+html.EscapeString(f.Updated))
	}
	if f.Text != "" {
		parts = append(parts, html.EscapeString(f.Text))
	}
	if f.ShowPageNumber {
		parts = append(parts, `<span class="pageNumber"></span>/<span class="totalPages"></span>`)
	}
	if len(parts) == 0 {
		return ""
	}

	return fmt.Sprintf(`<div style="font-size: 9px; font-family: %s; color: #9ca3af; width: 100%%; text-align: center; padding: 0 %sin;">%s</div>`,
		html.EscapeString(defaultFontFamily), formatInches(sideMargin), strings.Join(parts, " · "))
}

// buildPageCSS sizes the printed page. Chrome honors @page when printing
// from the browser; the PDF engines set the same geometry explicitly.
func buildPageCSS(page *PageSettings) string {
	if page == nil {
		page = DefaultPageSettings()
	}
	size := "A4"
	switch strings.ToLower(page.Size) {
	case PageSizeLetter:
		size = "letter"
	case PageSizeLegal:
		size = "legal"
	}
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		size += " landscape"
	}
	return fmt.Sprintf(`
@page {
  size: %s;
  margin: %sin;
}
`, size, formatInches(page.Margin))
}

// printCSS keeps colors and avoids splitting headers and sections.
const printCSS = `
@media print {
  body {
    margin: 0;
    padding: 0;
    -webkit-print-color-adjust: exact;
    print-color-adjust: exact;
  }
  .cv { margin: 0; padding: 0; }
  .cv-header { break-after: avoid; page-break-after: avoid; }
  .cv-section { break-inside: avoid; page-break-inside: avoid; }
  .cv h1, .cv h2, .cv h3 { break-after: avoid; page-break-after: avoid; }
  * {
    -webkit-print-color-adjust: exact !important;
    print-color-adjust: exact !important;
  }
}
`

// printScript opens the print dialog once the page has settled and closes
// the window afterwards.
var printScript = `window.onload = function () {
  setTimeout(function () { window.print(); }, ` + strconv.Itoa(printDelay) + `);
};
window.onafterprint = function () { window.close(); };`

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
