package assets

import (
	"errors"
	"fmt"
)

// TemplateSet holds one CV layout: its markup and the stylesheet that goes
// with it.
type TemplateSet struct {
	Name  string // Template key
	HTML  string // html/template source for the page body
	Style string // Layout CSS (without base.css)
}

// DefaultTemplateName is the layout used when none is selected.
const DefaultTemplateName = "classic"

// BaseStyleName is the stylesheet shared by every layout.
const BaseStyleName = "base"

// LoadTemplateSet loads the template and stylesheet for key from loader.
// Returns ErrTemplateNotFound if the template is missing and
// ErrIncompleteTemplateSet if only the stylesheet is missing.
func LoadTemplateSet(loader AssetLoader, key string) (*TemplateSet, error) {
	tmpl, err := loader.LoadTemplate(key)
	if err != nil {
		return nil, err
	}

	style, err := loader.LoadStyle(key)
	if err != nil {
		if errors.Is(err, ErrStyleNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrIncompleteTemplateSet, key)
		}
		return nil, err
	}

	return &TemplateSet{Name: key, HTML: tmpl, Style: style}, nil
}
