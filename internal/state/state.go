// Package state holds the editing session of one CV: the document being
// written, the display toggles, and whether an export is running.
//
// State is a value. Every change goes through Reduce, which returns a new
// State and never modifies its input. Store serializes dispatches and
// notifies subscribers, which the preview server and autosave use.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/format"
)

// Sentinel errors.
var (
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownAction = errors.New("unknown action")
	ErrNotExporting  = errors.New("no export in progress")
)

// UI holds the display toggles.
type UI struct {
	ShowPhoto bool
	Compact   bool
}

// State is one immutable snapshot of the session.
type State struct {
	Doc       cvbuilder.Document
	UI        UI
	Exporting bool

	// Revision increases whenever Doc or UI changes. It is not bumped by
	// export bookkeeping, so it tells autosave whether there is anything
	// new to write.
	Revision uint64
}

// Initial returns an empty session: classic template, Markdown content,
// photo frame shown.
func Initial() State {
	return State{
		Doc: cvbuilder.Document{
			Template: cvbuilder.DefaultTemplate,
			Format:   string(format.DefaultMode),
		},
		UI: UI{ShowPhoto: true},
	}
}

// Document returns the document to render, with the UI toggles applied.
func (s State) Document() cvbuilder.Document {
	doc := s.Doc
	doc.View = cvbuilder.View{HidePhoto: !s.UI.ShowPhoto, Compact: s.UI.Compact}
	return doc
}

// Field names a free-text Document field.
type Field string

// Editable fields.
const (
	FieldName       Field = "name"
	FieldTitle      Field = "title"
	FieldContact    Field = "contact"
	FieldContent    Field = "content"
	FieldHighlights Field = "highlights"
)

// Fields returns the editable fields in form order.
func Fields() []Field {
	return []Field{FieldName, FieldTitle, FieldContact, FieldContent, FieldHighlights}
}

// ParseField converts a user-supplied name to a Field. The draft file's
// names ("fullName", "jobTitle", "contactInfo", "cvContent") are accepted
// too.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "fullname":
		return FieldName, nil
	case "title", "jobtitle":
		return FieldTitle, nil
	case "contact", "contactinfo":
		return FieldContact, nil
	case "content", "cvcontent":
		return FieldContent, nil
	case "highlights":
		return FieldHighlights, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Action is a change request handled by Reduce.
type Action interface {
	action()
}

// Actions.
type (
	// SetField replaces one free-text field.
	SetField struct {
		Field Field
		Value string
	}

	// SetPhoto sets the photo to a data URI or http(s) URL.
	SetPhoto struct{ Photo string }

	// RemovePhoto clears the photo.
	RemovePhoto struct{}

	// SelectTemplate switches layouts. An empty key selects the default.
	SelectTemplate struct{ Key string }

	// SelectFormat switches how content and highlights are interpreted.
	SelectFormat struct{ Format string }

	// TogglePhoto shows or hides the photo frame.
	TogglePhoto struct{}

	// ToggleCompact switches the compact density.
	ToggleCompact struct{}

	// ExportStarted marks an export in flight. Rejected while one runs.
	ExportStarted struct{}

	// ExportFinished clears the in-flight mark.
	ExportFinished struct{}

	// Load replaces the document and toggles, e.g. from a saved draft.
	Load struct{ State State }

	// Reset clears the document and restores default toggles.
	Reset struct{}
)

func (SetField) action()       {}
func (SetPhoto) action()       {}
func (RemovePhoto) action()    {}
func (SelectTemplate) action() {}
func (SelectFormat) action()   {}
func (TogglePhoto) action()    {}
func (ToggleCompact) action()  {}
func (ExportStarted) action()  {}
func (ExportFinished) action() {}
func (Load) action()           {}
func (Reset) action()          {}

// Reduce applies a to s and returns the result. s is never modified. On
// error the returned State is s unchanged.
func Reduce(s State, a Action) (State, error) {
	next := s

	switch a := a.(type) {
	case SetField:
		if err := setField(&next.Doc, a.Field, a.Value); err != nil {
			return s, err
		}
	case SetPhoto:
		next.Doc.Photo = strings.TrimSpace(a.Photo)
	case RemovePhoto:
		next.Doc.Photo = ""
	case SelectTemplate:
		key := strings.TrimSpace(a.Key)
		if key == "" {
			key = cvbuilder.DefaultTemplate
		}
		next.Doc.Template = key
	case SelectFormat:
		mode, err := format.ParseMode(a.Format)
		if err != nil {
			return s, err
		}
		next.Doc.Format = string(mode)
	case TogglePhoto:
		next.UI.ShowPhoto = !s.UI.ShowPhoto
	case ToggleCompact:
		next.UI.Compact = !s.UI.Compact
	case ExportStarted:
		if s.Exporting {
			return s, cvbuilder.ErrExportInProgress
		}
		next.Exporting = true
		return next, nil
	case ExportFinished:
		if !s.Exporting {
			return s, ErrNotExporting
		}
		next.Exporting = false
		return next, nil
	case Load:
		loaded, err := normalize(a.State)
		if err != nil {
			return s, err
		}
		next.Doc, next.UI = loaded.Doc, loaded.UI
	case Reset:
		init := Initial()
		next.Doc, next.UI = init.Doc, init.UI
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	if next.Doc != s.Doc || next.UI != s.UI {
		next.Revision = s.Revision + 1
	}
	return next, nil
}

func setField(doc *cvbuilder.Document, f Field, v string) error {
	switch f {
	case FieldName:
		doc.Name = v
	case FieldTitle:
		doc.Title = v
	case FieldContact:
		doc.Contact = v
	case FieldContent:
		doc.Content = v
	case FieldHighlights:
		doc.Highlights = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

// normalize fills empty selections with defaults and canonicalizes the
// format name.
func normalize(s State) (State, error) {
	if strings.TrimSpace(s.Doc.Template) == "" {
		s.Doc.Template = cvbuilder.DefaultTemplate
	}
	mode, err := format.ParseMode(s.Doc.Format)
	if err != nil {
		return s, err
	}
	s.Doc.Format = string(mode)
	s.Doc.View = cvbuilder.View{}
	return s, nil
}
