package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
	"github.com/alnah/go-cvbuilder/internal/dateutil"
	"github.com/alnah/go-cvbuilder/internal/format"
	"github.com/alnah/go-cvbuilder/internal/hints"
	"github.com/alnah/go-cvbuilder/internal/state"
)

// Exit codes for the cvbuilder CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or document values
	ExitIO      = 3 // File not found, permission denied, unwritable output
	ExitBrowser = 4 // PDF engine or print window errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, cvbuilder.ErrBrowserConnect) ||
		errors.Is(err, cvbuilder.ErrPageCreate) ||
		errors.Is(err, cvbuilder.ErrPageLoad) ||
		errors.Is(err, cvbuilder.ErrPDFGeneration) ||
		errors.Is(err, cvbuilder.ErrPDFVerify) ||
		errors.Is(err, cvbuilder.ErrRasterizerUnavailable) ||
		errors.Is(err, cvbuilder.ErrPopupBlocked) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, state.ErrDraftCorrupt) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, cvbuilder.ErrEmptyPreview) ||
		errors.Is(err, cvbuilder.ErrInvalidPageSize) ||
		errors.Is(err, cvbuilder.ErrInvalidOrientation) ||
		errors.Is(err, cvbuilder.ErrInvalidMargin) ||
		errors.Is(err, cvbuilder.ErrTemplateNotFound) ||
		errors.Is(err, cvbuilder.ErrUnknownFormat) ||
		errors.Is(err, cvbuilder.ErrInvalidAssetPath) ||
		errors.Is(err, cvbuilder.ErrUnknownExportKind) ||
		errors.Is(err, cvbuilder.ErrInvalidPhoto) ||
		errors.Is(err, format.ErrUnknownEngine) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, state.ErrUnknownField) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "" when there is none.
// Config lookups attach their own hint since only they know the searched
// paths.
func hintFor(err error) string {
	switch {
	case errors.Is(err, cvbuilder.ErrBrowserConnect),
		errors.Is(err, cvbuilder.ErrRasterizerUnavailable):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, cvbuilder.ErrPopupBlocked):
		return hints.ForPopupBlocked("")
	case errors.Is(err, cvbuilder.ErrEmptyPreview):
		return hints.ForEmptyPreview()
	case errors.Is(err, cvbuilder.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(cvbuilder.Templates())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
