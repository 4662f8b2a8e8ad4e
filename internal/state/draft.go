package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
)

// Draft file location, relative to the user config directory.
const (
	DraftDirName  = "cvbuilder"
	DraftFileName = "draft.json"
)

// MaxDraftSize bounds draft files. Photos are stored inline, so this is
// well above the photo limit.
const MaxDraftSize = 8 << 20

// ErrDraftCorrupt indicates a draft file that is not valid JSON.
var ErrDraftCorrupt = errors.New("draft file is corrupt")

// Draft is the on-disk form of a session. Unknown fields are ignored and
// missing ones take their defaults.
type Draft struct {
	FullName    string  `json:"fullName"`
	JobTitle    string  `json:"jobTitle"`
	ContactInfo string  `json:"contactInfo"`
	CVContent   string  `json:"cvContent"`
	Highlights  string  `json:"highlights"`
	Photo       string  `json:"photo"`
	Template    string  `json:"template"`
	Format      string  `json:"format"`
	UI          DraftUI `json:"ui"`
}

// DraftUI holds the persisted toggles. ShowPhoto is a pointer so an absent
// value can default to true.
type DraftUI struct {
	ShowPhoto *bool `json:"showPhoto,omitempty"`
	Compact   bool  `json:"compact"`
}

// DefaultDraftPath returns the draft location under the user config
// directory.
func DefaultDraftPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, DraftDirName, DraftFileName), nil
}

// NewDraft captures the persisted part of s.
func NewDraft(s State) Draft {
	show := s.UI.ShowPhoto
	return Draft{
		FullName:    s.Doc.Name,
		JobTitle:    s.Doc.Title,
		ContactInfo: s.Doc.Contact,
		CVContent:   s.Doc.Content,
		Highlights:  s.Doc.Highlights,
		Photo:       s.Doc.Photo,
		Template:    s.Doc.Template,
		Format:      s.Doc.Format,
		UI:          DraftUI{ShowPhoto: &show, Compact: s.UI.Compact},
	}
}

// State converts d back into a session. An unknown format falls back to
// the default rather than failing, so an old draft always loads.
func (d Draft) State() State {
	s := Initial()
	s.Doc.Name = d.FullName
	s.Doc.Title = d.JobTitle
	s.Doc.Contact = d.ContactInfo
	s.Doc.Content = d.CVContent
	s.Doc.Highlights = d.Highlights
	s.Doc.Photo = d.Photo
	if d.Template != "" {
		s.Doc.Template = d.Template
	}
	s.Doc.Format = d.Format
	if d.UI.ShowPhoto != nil {
		s.UI.ShowPhoto = *d.UI.ShowPhoto
	}
	s.UI.Compact = d.UI.Compact

	if norm, err := normalize(s); err == nil {
		return norm
	}
	s.Doc.Format = Initial().Doc.Format
	return s
}

// LoadDraft reads the draft at path. A missing file returns an error
// matching fs.ErrNotExist.
func LoadDraft(path string) (State, error) {
	f, err := os.Open(path) // #nosec G304 -- draft path from config
	if err != nil {
		return State{}, fmt.Errorf("opening draft: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDraftSize+1))
	if err != nil {
		return State{}, fmt.Errorf("reading draft: %w", err)
	}
	if len(data) > MaxDraftSize {
		return State{}, fmt.Errorf("%w: exceeds %d bytes", ErrDraftCorrupt, MaxDraftSize)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrDraftCorrupt, err)
	}
	return d.State(), nil
}

// SaveDraft writes the persisted part of s to path atomically.
func SaveDraft(path string, s State) error {
	data, err := json.MarshalIndent(NewDraft(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o600)
}

// RemoveDraft deletes the draft at path. A missing file is not an error.
func RemoveDraft(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing draft: %w", err)
	}
	return nil
}
