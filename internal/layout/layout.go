// Package layout renders CV pages from the layout templates in
// internal/assets.
//
// Rendering is pure dispatch: a Page and a template key go in, an HTML
// document comes out. Content fields must already be safe HTML (see
// internal/format and internal/linkify); Name and Title are escaped here.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/alnah/go-cvbuilder/internal/assets"
)

// Display fallbacks for empty header fields.
const (
	DefaultName    = "Your Name"
	DefaultTitle   = "Your Job Title"
	DefaultContact = "Your contact information"
)

// ErrTemplateRender indicates a layout template failed to parse or execute.
var ErrTemplateRender = errors.New("template rendering failed")

// Page is the data passed to a layout template.
type Page struct {
	Name       string
	Title      string
	Contact    template.HTML
	Content    template.HTML
	Highlights template.HTML
	Photo      template.URL
	ShowPhoto  bool
	Compact    bool
}

// withDefaults fills empty header fields with their placeholders.
func (p Page) withDefaults() Page {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = DefaultName
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	if strings.TrimSpace(string(p.Contact)) == "" {
		p.Contact = DefaultContact
	}
	return p
}

// photoURL accepts inline raster images and http(s) links.
var photoURL = regexp.MustCompile(`^(?:data:image/(?:png|jpe?g|gif|webp);base64,[A-Za-z0-9+/=\s]+|https?://\S+)$`)

// PhotoURL returns src as a trusted URL if it is an inline image or an
// http(s) link, and "" otherwise.
func PhotoURL(src string) template.URL {
	src = strings.TrimSpace(src)
	if !photoURL.MatchString(src) {
		return ""
	}
	return template.URL(src) // #nosec G203 -- validated above
}

// compiled is a parsed template set.
type compiled struct {
	tmpl  *template.Template
	style string
}

// Renderer renders pages with templates from an asset loader.
// Parsed templates are cached per key. A Renderer is safe for concurrent use.
type Renderer struct {
	loader assets.AssetLoader

	mu    sync.Mutex
	base  string
	cache map[string]*compiled
}

// NewRenderer creates a Renderer backed by loader.
func NewRenderer(loader assets.AssetLoader) *Renderer {
	return &Renderer{
		loader: loader,
		cache:  make(map[string]*compiled),
	}
}

// Templates returns the available template keys, sorted.
func (r *Renderer) Templates() ([]string, error) {
	return r.loader.ListTemplates()
}

// Has reports whether key names a loadable template.
func (r *Renderer) Has(key string) bool {
	_, err := r.load(key)
	return err == nil
}

// Body renders only the page body for key.
func (r *Renderer) Body(key string, p Page) (string, error) {
	c, err := r.load(key)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, p.withDefaults()); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrTemplateRender, key, err)
	}
	return buf.String(), nil
}

// Style returns the full stylesheet for key: base rules, then layout rules.
func (r *Renderer) Style(key string) (string, error) {
	c, err := r.load(key)
	if err != nil {
		return "", err
	}
	return r.base + "\n" + c.style, nil
}

// Render produces a complete HTML document for key.
// extraCSS is appended after the layout stylesheet so it can override it.
func (r *Renderer) Render(key string, p Page, extraCSS string) (string, error) {
	body, err := r.Body(key, p)
	if err != nil {
		return "", err
	}
	css, err := r.Style(key)
	if err != nil {
		return "", err
	}
	if extraCSS != "" {
		css += "\n" + extraCSS
	}

	doc := Document{
		Title: DocumentTitle(p.Name),
		Body:  body,
	}
	return InjectCSS(doc.HTML(), css), nil
}

// load returns the compiled set for key, parsing it on first use.
func (r *Renderer) load(key string) (*compiled, error) {
	if key == "" {
		key = assets.DefaultTemplateName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[key]; ok {
		return c, nil
	}

	if r.base == "" {
		base, err := r.loader.LoadStyle(assets.BaseStyleName)
		if err != nil {
			return nil, fmt.Errorf("loading base style: %w", err)
		}
		r.base = base
	}

	ts, err := assets.LoadTemplateSet(r.loader, key)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(key).Parse(ts.HTML)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrTemplateRender, key, err)
	}

	c := &compiled{tmpl: tmpl, style: ts.Style}
	r.cache[key] = c
	return c, nil
}

// DocumentTitle returns the <title> used for a CV of name.
func DocumentTitle(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "CV"
	}
	return "CV - " + name
}
