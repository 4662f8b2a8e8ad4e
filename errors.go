package cvbuilder

import (
	"errors"

	"github.com/alnah/go-cvbuilder/internal/assets"
	"github.com/alnah/go-cvbuilder/internal/format"
)

// Sentinel errors for library operations.
var (
	ErrEmptyPreview          = errors.New("rendered preview is empty")
	ErrRasterizerUnavailable = errors.New("no PDF engine available")
	ErrPopupBlocked          = errors.New("print window could not be opened")
	ErrExportInProgress      = errors.New("an export is already in progress")
	ErrBrowserConnect        = errors.New("failed to connect to browser")
	ErrPageCreate            = errors.New("failed to create browser page")
	ErrPageLoad              = errors.New("failed to load page")
	ErrPDFGeneration         = errors.New("PDF generation failed")
	ErrPDFVerify             = errors.New("PDF verification failed")
	ErrUnknownExportKind     = errors.New("unknown export kind")
	ErrInvalidPhoto          = errors.New("invalid photo")
	ErrBuilderClosed         = errors.New("builder is closed")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Asset and content errors shared with internal packages, so callers can
	// match them without importing internal/.
	ErrTemplateNotFound = assets.ErrTemplateNotFound
	ErrInvalidAssetPath = assets.ErrInvalidBasePath
	ErrUnknownFormat    = format.ErrUnknownMode
)
