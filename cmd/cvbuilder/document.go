package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
	"github.com/alnah/go-cvbuilder/internal/fileutil"
	"github.com/alnah/go-cvbuilder/internal/server"
	"github.com/alnah/go-cvbuilder/internal/yamlutil"
)

// loadDocument reads a YAML or JSON CV document. Unknown keys are rejected
// so a misspelt field does not silently vanish. A photo given as a file
// path is read relative to the document and inlined as a data URI.
func loadDocument(path string) (cvbuilder.Document, error) {
	var doc cvbuilder.Document
	if err := yamlutil.ReadFile(path, &doc, true); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return doc, fmt.Errorf("%w: %w", ErrReadDocument, err)
		}
		return doc, fmt.Errorf("%w: %s: %v", ErrParseDocument, path, err)
	}

	photo, err := resolvePhoto(doc.Photo, filepath.Dir(path))
	if err != nil {
		return doc, err
	}
	doc.Photo = photo
	return doc, nil
}

// resolvePhoto inlines a photo file. Data URIs and http(s) URLs are kept.
func resolvePhoto(photo, baseDir string) (string, error) {
	photo = strings.TrimSpace(photo)
	if photo == "" || strings.HasPrefix(photo, "data:") || fileutil.IsURL(photo) {
		return photo, nil
	}
	if !filepath.IsAbs(photo) {
		photo = filepath.Join(baseDir, photo)
	}
	return cvbuilder.LoadPhoto(photo)
}

// resolveDocument returns the document to work on and the file it came
// from. Without arguments it is the draft, and source is empty.
func resolveDocument(args []string, f documentFlags, cfg *config.Config) (doc cvbuilder.Document, source string, err error) {
	switch len(args) {
	case 0:
		path, err := resolveDraftPath(f.draft, cfg)
		if err != nil {
			return doc, "", err
		}
		s, err := loadSession(path, cfg)
		if err != nil {
			return doc, "", err
		}
		doc = s.Document()
	case 1:
		source = args[0]
		if doc, err = loadDocument(source); err != nil {
			return doc, "", err
		}
		applyConfigDefaults(&doc, cfg)
	default:
		return doc, "", fmt.Errorf("%w: expected at most one input, got %d", ErrUsage, len(args))
	}

	applyDocumentFlags(&doc, f)
	return doc, source, nil
}

// applyConfigDefaults fills the fields a document file left empty.
func applyConfigDefaults(doc *cvbuilder.Document, cfg *config.Config) {
	if doc.Template == "" {
		doc.Template = cfg.Template
	}
	if doc.Format == "" {
		doc.Format = cfg.Format
	}
	if !cfg.ShowPhoto() {
		doc.View.HidePhoto = true
	}
	if cfg.UI.Compact {
		doc.View.Compact = true
	}
}

// applyDocumentFlags applies document flags (CLI wins).
func applyDocumentFlags(doc *cvbuilder.Document, f documentFlags) {
	if f.template != "" {
		doc.Template = f.template
	}
	if f.format != "" {
		doc.Format = f.format
	}
	if f.compact {
		doc.View.Compact = true
	}
	if f.noPhoto {
		doc.View.HidePhoto = true
	}
}

// resolveOutputPath picks where an export is written:
//
//	-o out.pdf      -> out.pdf
//	-o dir/         -> dir/<stem>.<ext>
//	input cv.yaml   -> <output dir, else input dir>/cv.<ext>
//	draft           -> <output dir, else .>/<name>-cv.<ext>
func resolveOutputPath(flagOutput, source, name string, kind cvbuilder.ExportKind, outputDir string) string {
	stem := server.FileStem(name)
	if source != "" {
		base := filepath.Base(source)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	file := stem + "." + kind.Ext()

	if flagOutput != "" {
		if fileutil.DirExists(flagOutput) || strings.HasSuffix(flagOutput, "/") ||
			strings.HasSuffix(flagOutput, string(filepath.Separator)) {
			return filepath.Join(flagOutput, file)
		}
		return flagOutput
	}

	dir := outputDir
	if dir == "" && source != "" {
		dir = filepath.Dir(source)
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, file)
}
