package cvbuilder

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alnah/go-cvbuilder/internal/dateutil"
	"github.com/alnah/go-cvbuilder/internal/format"
	"github.com/alnah/go-cvbuilder/internal/layout"
	"github.com/alnah/go-cvbuilder/internal/linkify"
)

// Builder renders Documents into HTML pages and exports them.
// Create with NewBuilder and Close when done. Renders may run concurrently;
// a second Export while one is running fails with ErrExportInProgress.
type Builder struct {
	cfg    builderConfig
	logger *slog.Logger

	loader    AssetLoader
	renderer  *layout.Renderer
	formatter *format.Formatter

	engines []Rasterizer
	chain   *EngineChain
	opener  PrintOpener

	exporting atomic.Bool
	closed    atomic.Bool
}

// NewBuilder creates a Builder. Without options it uses the embedded
// templates, the line Markdown engine, A4 pages, the default PDF engine
// chain and the system browser for printing.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: builderConfig{
			timeout:     defaultTimeout,
			settleDelay: defaultSettleDelay,
			loadTimeout: defaultLoadTimeout,
			recheck:     defaultRecheck,
			engine:      format.EngineLine,
			now:         time.Now,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.loader == nil {
		loader, err := NewAssetLoader(b.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		b.loader = loader
	}
	if err := b.cfg.page.Validate(); err != nil {
		return nil, err
	}
	if b.cfg.footer != nil {
		if _, err := dateutil.Resolve(b.cfg.footer.Updated, b.cfg.now()); err != nil {
			return nil, err
		}
	}

	b.renderer = layout.NewRenderer(b.loader)
	b.formatter = format.New(format.WithEngine(b.cfg.engine))

	if b.engines == nil {
		b.engines = DefaultRasterizers(b.cfg.timeout)
	}
	b.chain = NewEngineChain(b.cfg.loadTimeout, b.cfg.recheck, b.logger, b.engines...)

	if b.opener == nil {
		b.opener = &BrowserOpener{}
	}
	return b, nil
}

// DefaultRasterizers returns the default engine chain: an installed
// browser via rod, a rod-managed download, then chromedp.
func DefaultRasterizers(timeout time.Duration) []Rasterizer {
	return []Rasterizer{
		NewRodEngine(timeout),
		NewManagedRodEngine(timeout),
		NewChromedpEngine(),
	}
}

// RasterizersByName builds an engine chain from names such as "rod" or
// "chromedp". An empty list yields DefaultRasterizers.
func RasterizersByName(names []string, timeout time.Duration) ([]Rasterizer, error) {
	if len(names) == 0 {
		return DefaultRasterizers(timeout), nil
	}
	rs := make([]Rasterizer, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(n) {
		case EngineRod:
			rs = append(rs, NewRodEngine(timeout))
		case EngineRodManaged:
			rs = append(rs, NewManagedRodEngine(timeout))
		case EngineChromedp:
			rs = append(rs, NewChromedpEngine())
		default:
			return nil, fmt.Errorf("%w: unknown engine %q", ErrRasterizerUnavailable, n)
		}
	}
	return rs, nil
}

// Render produces the complete HTML page for doc, with the template's CSS
// inlined. Rendering is a pure function of doc and the Builder's options.
func (b *Builder) Render(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mode, err := format.ParseMode(doc.Format)
	if err != nil {
		return "", err
	}
	return b.renderer.Render(doc.Template, b.page(doc, mode), b.cfg.extraCSS)
}

// page converts doc into template data, formatting every HTML field.
func (b *Builder) page(doc Document, mode format.Mode) layout.Page {
	p := layout.Page{
		Name:      doc.Name,
		Title:     doc.Title,
		Content:   safeHTML(b.formatter.Format(doc.Content, mode)),
		Photo:     layout.PhotoURL(doc.Photo),
		ShowPhoto: !doc.View.HidePhoto,
		Compact:   doc.View.Compact,
	}
	if strings.TrimSpace(doc.Contact) != "" {
		p.Contact = safeHTML(linkify.Contact(doc.Contact))
	}
	if strings.TrimSpace(doc.Highlights) != "" {
		p.Highlights = safeHTML(b.formatter.Format(doc.Highlights, mode))
	}
	return p
}

// Templates returns the template keys available to this Builder.
func (b *Builder) Templates() ([]string, error) {
	return b.renderer.Templates()
}

// HasTemplate reports whether key can be rendered.
func (b *Builder) HasTemplate(key string) bool {
	return b.renderer.Has(key)
}

// Engines returns the configured PDF engine names in order.
func (b *Builder) Engines() []string {
	return b.chain.Engines()
}

// Close releases browser resources. Further exports fail with
// ErrBuilderClosed.
func (b *Builder) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.chain.Close()
}

// pageSettings returns the PDF page settings with the footer date resolved.
func (b *Builder) pageSettings() *PageSettings {
	page := DefaultPageSettings()
	if b.cfg.page != nil {
		cp := *b.cfg.page
		page = &cp
	}
	if b.cfg.footer != nil {
		f := *b.cfg.footer
		f.Updated, _ = dateutil.Resolve(f.Updated, b.cfg.now())
		page.Footer = &f
	}
	return page
}

// safeHTML marks formatter and linkifier output as trusted. Both only emit
// allow-listed markup.
func safeHTML(s string) template.HTML {
	return template.HTML(s) // #nosec G203 -- sanitized by internal/format or internal/linkify
}
