package cvbuilder

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
)

var (
	_ Rasterizer = (*chromedpEngine)(nil)
	_ Starter    = (*chromedpEngine)(nil)
	_ io.Closer  = (*chromedpEngine)(nil)
)

// chromedpEngine renders PDFs over the DevTools protocol with chromedp.
// It finds Chrome on its own and is the last engine in the default chain.
type chromedpEngine struct {
	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpEngine returns a chromedp-backed engine.
func NewChromedpEngine() Rasterizer {
	return &chromedpEngine{}
}

func (e *chromedpEngine) Name() string { return EngineChromedp }

// Start allocates the browser. The browser outlives ctx; only the wait for
// it to come up is bounded.
func (e *chromedpEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	if noSandbox() {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(browserCtx) }()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-done:
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %s: %v", ErrBrowserConnect, EngineChromedp, err)
	}

	e.allocCancel, e.browserCtx, e.browserCancel = allocCancel, browserCtx, browserCancel
	return nil
}

// Rasterize opens html in a new tab and prints it to PDF.
func (e *chromedpEngine) Rasterize(ctx context.Context, html string, pg *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.Start(ctx); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	e.mu.Lock()
	browserCtx := e.browserCtx
	e.mu.Unlock()
	if browserCtx == nil {
		return nil, ErrBrowserConnect
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	p := newPDFParams(pg)
	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+path),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = buildChromedpPrint(p).Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

// buildChromedpPrint maps engine-neutral parameters to a PrintToPDF call.
func buildChromedpPrint(p pdfParams) *page.PrintToPDFParams {
	params := page.PrintToPDF().
		WithPaperWidth(p.width).
		WithPaperHeight(p.height).
		WithMarginTop(p.marginTop).
		WithMarginBottom(p.marginBottom).
		WithMarginLeft(p.marginSide).
		WithMarginRight(p.marginSide).
		WithPrintBackground(true)
	if p.footer != "" {
		params = params.
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(p.footer)
	}
	return params
}

// Close stops the browser. It is idempotent.
func (e *chromedpEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.allocCancel()
	}
	e.allocCancel, e.browserCtx, e.browserCancel = nil, nil, nil
	return nil
}
