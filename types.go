package cvbuilder

import (
	"fmt"
	"strings"
)

// Document is one CV. Every field is optional: empty header fields render
// as placeholders and empty content renders the placeholder section.
type Document struct {
	Name       string `yaml:"name" json:"name"`
	Title      string `yaml:"title" json:"title"`
	Contact    string `yaml:"contact" json:"contact"`       // free text, linkified
	Content    string `yaml:"content" json:"content"`       // interpreted per Format
	Highlights string `yaml:"highlights" json:"highlights"` // interpreted per Format
	Photo      string `yaml:"photo" json:"photo"`           // data URI or http(s) URL
	Template   string `yaml:"template" json:"template"`     // empty = classic
	Format     string `yaml:"format" json:"format"`         // html, markdown, text; empty = markdown
	View       View   `yaml:"view" json:"view"`
}

// View holds the display toggles of a render. The zero value shows the
// photo frame at normal density.
type View struct {
	HidePhoto bool `yaml:"hidePhoto" json:"hidePhoto"`
	Compact   bool `yaml:"compact" json:"compact"`
}

// IsBlank reports whether no user-visible field has been filled in.
func (d Document) IsBlank() bool {
	for _, s := range []string{d.Name, d.Title, d.Contact, d.Content, d.Highlights, d.Photo} {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 2.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, all sides
	Footer      *Footer // nil = no footer
}

// DefaultPageSettings returns A4 portrait with half-inch margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks page settings. A nil receiver is valid and means defaults.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, _, ok := paperSize(p.Size); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Dimensions returns the paper width and height in inches, swapped for
// landscape. Unknown sizes fall back to A4.
func (p *PageSettings) Dimensions() (width, height float64) {
	if p == nil {
		p = DefaultPageSettings()
	}
	w, h, ok := paperSize(p.Size)
	if !ok {
		w, h, _ = paperSize(PageSizeA4)
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return h, w
	}
	return w, h
}

func paperSize(size string) (width, height float64, ok bool) {
	switch strings.ToLower(size) {
	case PageSizeA4:
		return 8.27, 11.69, true
	case PageSizeLetter:
		return 8.5, 11, true
	case PageSizeLegal:
		return 8.5, 14, true
	}
	return 0, 0, false
}

// Footer configures the PDF footer line.
type Footer struct {
	Updated        string // literal, or "auto[:FORMAT]" resolved at export time
	Text           string
	ShowPageNumber bool
}

// ExportKind selects an export output.
type ExportKind string

// Export kinds.
const (
	ExportPDF   ExportKind = "pdf"
	ExportPrint ExportKind = "print" // print-ready HTML opened in a browser
	ExportHTML  ExportKind = "html"
	ExportText  ExportKind = "txt"
)

// ExportKinds returns every supported kind.
func ExportKinds() []ExportKind {
	return []ExportKind{ExportPDF, ExportPrint, ExportHTML, ExportText}
}

// ParseExportKind converts a user-supplied name to an ExportKind.
func ParseExportKind(s string) (ExportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return ExportPDF, nil
	case "print":
		return ExportPrint, nil
	case "html", "htm":
		return ExportHTML, nil
	case "txt", "text":
		return ExportText, nil
	}
	return "", fmt.Errorf("%w: %q (must be pdf, print, html, or txt)", ErrUnknownExportKind, s)
}

// Ext returns the file extension for the kind, without the dot.
func (k ExportKind) Ext() string {
	switch k {
	case ExportPrint:
		return "print.html"
	case ExportText:
		return "txt"
	default:
		return string(k)
	}
}

// ContentType returns the MIME type of the kind's output.
func (k ExportKind) ContentType() string {
	switch k {
	case ExportPDF:
		return "application/pdf"
	case ExportText:
		return "text/plain; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}

// ExportResult is the outcome of a successful export.
type ExportResult struct {
	Kind     ExportKind // kind actually produced; ExportPrint after a fallback
	Data     []byte
	Engine   string // PDF engine name, empty for other kinds
	FellBack bool   // PDF failed and the print path was used
	Cause    error  // why the PDF path failed when FellBack is set
	PrintURL string // file URL handed to the print opener
}
