package cvbuilder

import (
	"log/slog"
	"time"

	"github.com/alnah/go-cvbuilder/internal/format"
)

// Default timings.
const (
	defaultTimeout     = 30 * time.Second
	defaultSettleDelay = 500 * time.Millisecond
	defaultLoadTimeout = 5 * time.Second
	defaultRecheck     = 250 * time.Millisecond
)

// Option configures a Builder.
type Option func(*Builder)

// builderConfig holds the settings collected from options.
type builderConfig struct {
	timeout     time.Duration
	settleDelay time.Duration
	loadTimeout time.Duration
	recheck     time.Duration
	engine      format.Engine
	assetPath   string
	page        *PageSettings
	footer      *Footer
	extraCSS    string
	verify      bool
	now         func() time.Time
}

// WithTimeout bounds a whole export. Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cvbuilder: WithTimeout duration must be positive")
	}
	return func(b *Builder) {
		b.cfg.timeout = d
	}
}

// WithSettleDelay sets the pause between rendering and the PDF snapshot.
// Zero disables it; negative values panic.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("cvbuilder: WithSettleDelay duration must not be negative")
	}
	return func(b *Builder) {
		b.cfg.settleDelay = d
	}
}

// WithLoadTimeout bounds how long each PDF engine may take to start.
// Panics if d <= 0.
func WithLoadTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cvbuilder: WithLoadTimeout duration must be positive")
	}
	return func(b *Builder) {
		b.cfg.loadTimeout = d
	}
}

// WithLogger sets the logger used for export diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMarkdownEngine selects the Markdown implementation.
func WithMarkdownEngine(e format.Engine) Option {
	return func(b *Builder) {
		b.cfg.engine = e
	}
}

// WithAssetPath adds a directory of custom templates and styles. Custom
// assets take precedence over the embedded ones.
func WithAssetPath(path string) Option {
	return func(b *Builder) {
		b.cfg.assetPath = path
	}
}

// WithAssetLoader replaces asset loading entirely.
func WithAssetLoader(l AssetLoader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithPageSettings sets the PDF page geometry. Defaults to A4 portrait.
func WithPageSettings(p *PageSettings) Option {
	return func(b *Builder) {
		b.cfg.page = p
	}
}

// WithFooter enables the PDF footer.
func WithFooter(f *Footer) Option {
	return func(b *Builder) {
		b.cfg.footer = f
	}
}

// WithCSS appends css after the template stylesheet.
func WithCSS(css string) Option {
	return func(b *Builder) {
		b.cfg.extraCSS = css
	}
}

// WithVerify re-reads every produced PDF and fails the export when it has
// no extractable text.
func WithVerify(enabled bool) Option {
	return func(b *Builder) {
		b.cfg.verify = enabled
	}
}

// WithRasterizers sets the PDF engines, tried in order.
func WithRasterizers(rs ...Rasterizer) Option {
	return func(b *Builder) {
		b.engines = rs
	}
}

// WithPrintOpener sets how print-ready pages are shown to the user.
func WithPrintOpener(o PrintOpener) Option {
	return func(b *Builder) {
		b.opener = o
	}
}
