package cvbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-cvbuilder/internal/layout"
)

// Export renders doc and produces kind.
//
// A PDF export waits for the settle delay, resolves an engine from the
// chain and rasterizes the page. If any step of the PDF path fails, the
// print path runs exactly once instead and the result has FellBack set;
// only a failure to open the print page is returned as an error
// (ErrPopupBlocked). Cancelling ctx aborts without falling back.
//
// Only one export runs at a time per Builder: a concurrent call returns
// ErrExportInProgress immediately.
func (b *Builder) Export(ctx context.Context, doc Document, kind ExportKind) (*ExportResult, error) {
	if b.closed.Load() {
		return nil, ErrBuilderClosed
	}
	if !b.exporting.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer b.exporting.Store(false)

	rendered, err := b.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	if isEmptyPreview(rendered) {
		return nil, ErrEmptyPreview
	}

	switch kind {
	case ExportHTML:
		return &ExportResult{Kind: ExportHTML, Data: []byte(rendered)}, nil
	case ExportText:
		return &ExportResult{Kind: ExportText, Data: []byte(ToText(rendered))}, nil
	case ExportPrint:
		return b.exportPrint(ctx, rendered)
	case ExportPDF:
		return b.exportPDF(ctx, doc, rendered)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExportKind, kind)
	}
}

// Exporting reports whether an export is in flight.
func (b *Builder) Exporting() bool {
	return b.exporting.Load()
}

func (b *Builder) exportPDF(ctx context.Context, doc Document, rendered string) (*ExportResult, error) {
	pdfCtx, cancel := context.WithTimeout(ctx, b.cfg.timeout)
	defer cancel()

	data, engine, err := b.rasterize(pdfCtx, doc, rendered)
	if err == nil {
		return &ExportResult{Kind: ExportPDF, Data: data, Engine: engine}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	b.logger.Warn("PDF export failed, using print path", "error", err)
	res, printErr := b.exportPrint(ctx, rendered)
	if printErr != nil {
		return nil, fmt.Errorf("%w (PDF export failed: %v)", printErr, err)
	}
	res.FellBack = true
	res.Cause = err
	return res, nil
}

func (b *Builder) rasterize(ctx context.Context, doc Document, rendered string) ([]byte, string, error) {
	if err := sleep(ctx, b.cfg.settleDelay); err != nil {
		return nil, "", err
	}

	engine, err := b.chain.Resolve(ctx)
	if err != nil {
		return nil, "", err
	}

	b.logger.Debug("rasterizing", "engine", engine.Name())
	data, err := engine.Rasterize(ctx, layout.InjectCSS(rendered, printCSS), b.pageSettings())
	if err != nil {
		b.chain.Reset()
		return nil, engine.Name(), fmt.Errorf("%s: %w", engine.Name(), err)
	}
	if len(data) == 0 {
		return nil, engine.Name(), fmt.Errorf("%w: %s produced no data", ErrPDFGeneration, engine.Name())
	}

	if b.cfg.verify {
		want := strings.TrimSpace(doc.Name)
		if want == "" {
			want = layout.DefaultName
		}
		if err := VerifyPDF(data, want); err != nil {
			return nil, engine.Name(), err
		}
	}
	return data, engine.Name(), nil
}

func (b *Builder) exportPrint(ctx context.Context, rendered string) (*ExportResult, error) {
	doc := PrintDocument(rendered, b.pageSettings())
	url, err := writePrintFile(doc)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("opening print page", "url", url)
	if err := b.opener.Open(ctx, url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrPopupBlocked) {
			err = fmt.Errorf("%w: %v", ErrPopupBlocked, err)
		}
		return nil, err
	}
	return &ExportResult{Kind: ExportPrint, Data: []byte(doc), PrintURL: url}, nil
}

// isEmptyPreview reports whether a rendered page shows nothing: no text
// outside the photo frame and no image.
func isEmptyPreview(rendered string) bool {
	if strings.Contains(rendered, "<img") {
		return false
	}
	return strings.TrimSpace(ToText(rendered)) == ""
}
