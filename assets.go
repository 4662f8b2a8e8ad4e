package cvbuilder

import (
	"github.com/alnah/go-cvbuilder/internal/assets"
)

// DefaultTemplate is the template used when a Document names none.
const DefaultTemplate = assets.DefaultTemplateName

// AssetLoader supplies layout templates and their stylesheets.
// Implementations may read from disk, embed.FS, a database, etc.
type AssetLoader interface {
	// LoadStyle returns the CSS named name (without extension).
	LoadStyle(name string) (string, error)

	// LoadTemplate returns the html/template source for a template key.
	LoadTemplate(name string) (string, error)

	// ListTemplates returns the available template keys, sorted.
	ListTemplates() ([]string, error)
}

var (
	_ AssetLoader = (*assets.EmbeddedLoader)(nil)
	_ AssetLoader = (*assets.AssetResolver)(nil)
)

// NewAssetLoader returns a loader for basePath with fallback to the
// embedded templates. An empty basePath yields the embedded templates only.
// basePath must contain templates/<key>.html and styles/<key>.css.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	r, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Templates lists the embedded template keys.
func Templates() []string {
	keys, _ := assets.ListTemplates()
	return keys
}
