// Package format converts free-form CV text into a bounded, safe subset of
// HTML.
//
// Three input modes are supported: raw HTML (sanitized directly), Markdown
// (converted then sanitized) and plain text (paragraphs and bullet lists).
// Every mode ends in the same allow-list, so callers can inject the result
// into a template without further escaping.
package format

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode selects how raw content is interpreted.
type Mode string

// Content modes.
const (
	ModeHTML     Mode = "html"
	ModeMarkdown Mode = "markdown"
	ModeText     Mode = "text"
)

// DefaultMode is used when no mode is given.
const DefaultMode = ModeMarkdown

// Engine selects the Markdown implementation.
type Engine string

// Markdown engines.
const (
	EngineLine Engine = "line" // built-in line converter
	EngineGFM  Engine = "gfm"  // goldmark with GFM extensions
)

// Placeholder is returned for empty content in every mode.
const Placeholder = `<div class="cv-section"><h3>CV Content</h3><p>Enter your CV content in the editor...</p></div>`

// Sentinel errors.
var (
	ErrUnknownMode   = errors.New("unknown content format")
	ErrUnknownEngine = errors.New("unknown markdown engine")
)

// Modes returns the supported content modes.
func Modes() []Mode {
	return []Mode{ModeHTML, ModeMarkdown, ModeText}
}

// ParseMode converts a user-supplied name to a Mode.
// Matching is case-insensitive; "md" and "txt" are accepted as aliases and
// an empty string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMode, nil
	case "html", "htm":
		return ModeHTML, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "text", "txt", "plain":
		return ModeText, nil
	default:
		return "", fmt.Errorf("%w: %q (must be html, markdown, or text)", ErrUnknownMode, s)
	}
}

// ParseEngine converts a user-supplied name to an Engine.
// An empty string yields EngineLine.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(EngineLine):
		return EngineLine, nil
	case string(EngineGFM):
		return EngineGFM, nil
	default:
		return "", fmt.Errorf("%w: %q (must be line or gfm)", ErrUnknownEngine, s)
	}
}

// Formatter dispatches raw content to the converter for its mode.
// A Formatter is safe for concurrent use.
type Formatter struct {
	engine Engine
	line   LineConverter
	gfm    *GoldmarkConverter
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithEngine selects the Markdown engine.
func WithEngine(e Engine) Option {
	return func(f *Formatter) {
		f.engine = e
	}
}

// New creates a Formatter. The built-in line converter is the default
// Markdown engine.
func New(opts ...Option) *Formatter {
	f := &Formatter{engine: EngineLine}
	for _, opt := range opts {
		opt(f)
	}
	if f.engine == EngineGFM {
		f.gfm = NewGoldmarkConverter()
	}
	return f
}

// Engine returns the configured Markdown engine.
func (f *Formatter) Engine() Engine {
	return f.engine
}

// Format converts raw content according to mode.
// Whitespace-only input yields Placeholder. An unrecognized mode is treated
// as plain text, which escapes everything.
func (f *Formatter) Format(raw string, mode Mode) string {
	if strings.TrimSpace(raw) == "" {
		return Placeholder
	}

	var out string
	switch mode {
	case ModeHTML:
		out = Sanitize(raw)
	case ModeMarkdown:
		out = Sanitize(f.markdown(raw))
	default:
		out = Sanitize(textToHTML(raw))
	}

	if strings.TrimSpace(out) == "" {
		return Placeholder
	}
	return out
}

// markdown runs the configured engine, degrading to the line converter if
// goldmark fails.
func (f *Formatter) markdown(raw string) string {
	if f.gfm != nil {
		out, err := f.gfm.ToHTML(context.Background(), raw)
		if err == nil {
			return out
		}
	}
	return f.line.Convert(raw)
}

var defaultFormatter = New()

// Format converts raw content with the default Formatter.
func Format(raw string, mode Mode) string {
	return defaultFormatter.Format(raw, mode)
}
