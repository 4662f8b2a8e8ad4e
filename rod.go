package cvbuilder

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
	"github.com/alnah/go-cvbuilder/internal/process"
)

// Engine names.
const (
	EngineRod        = "rod"
	EngineRodManaged = "rod-managed"
	EngineChromedp   = "chromedp"
)

var (
	_ Rasterizer = (*rodEngine)(nil)
	_ Starter    = (*rodEngine)(nil)
	_ io.Closer  = (*rodEngine)(nil)
)

// rodEngine renders PDFs with go-rod. The local variant only uses a browser
// already installed on the machine; the managed variant lets rod download
// one on first use.
type rodEngine struct {
	name    string
	managed bool
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodEngine returns an engine driving an installed Chrome or Chromium
// (ROD_BROWSER_BIN, or the first browser found on the system).
func NewRodEngine(timeout time.Duration) Rasterizer {
	return &rodEngine{name: EngineRod, timeout: timeout}
}

// NewManagedRodEngine returns an engine that downloads a pinned Chromium
// build when none is cached.
func NewManagedRodEngine(timeout time.Duration) Rasterizer {
	return &rodEngine{name: EngineRodManaged, managed: true, timeout: timeout}
}

func (e *rodEngine) Name() string { return e.name }

// Start launches and connects to the browser unless already connected.
// Launching continues in the background when ctx expires first, and the
// late browser is shut down.
func (e *rodEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return nil
	}

	type launched struct {
		l   *launcher.Launcher
		b   *rod.Browser
		err error
	}
	done := make(chan launched, 1)
	go func() {
		l, b, err := e.launch()
		done <- launched{l, b, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				_ = shutdown(r.l, r.b)
			}
		}()
		return fmt.Errorf("%w: %s: %v", ErrBrowserConnect, e.name, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		e.launcher, e.browser = r.l, r.b
		return nil
	}
}

func (e *rodEngine) launch() (*launcher.Launcher, *rod.Browser, error) {
	bin, err := e.browserBin()
	if err != nil {
		return nil, nil, err
	}

	l := launcher.New().Bin(bin).Headless(true)
	if noSandbox() {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return l, b, nil
}

// browserBin picks the executable: ROD_BROWSER_BIN first, then a local
// install, then (managed only) a downloaded build.
func (e *rodEngine) browserBin() (string, error) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, nil
	}
	if !e.managed {
		if path, found := launcher.LookPath(); found {
			return path, nil
		}
		return "", fmt.Errorf("%w: no local Chrome or Chromium found", ErrBrowserConnect)
	}
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("%w: downloading Chromium: %v", ErrBrowserConnect, err)
	}
	return path, nil
}

// Rasterize writes html to a temp file, loads it and prints it to PDF.
func (e *rodEngine) Rasterize(ctx context.Context, html string, page *PageSettings) ([]byte, error) {
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
	browser := e.browser
	e.mu.Unlock()
	if browser == nil {
		return nil, ErrBrowserConnect
	}

	p, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer p.Close()
	p = p.Context(ctx)

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := p.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := p.PDF(buildRodPDFOptions(newPDFParams(page)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// buildRodPDFOptions maps engine-neutral parameters to rod's print call.
func buildRodPDFOptions(p pdfParams) *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(p.width),
		PaperHeight:     floatPtr(p.height),
		MarginTop:       floatPtr(p.marginTop),
		MarginBottom:    floatPtr(p.marginBottom),
		MarginLeft:      floatPtr(p.marginSide),
		MarginRight:     floatPtr(p.marginSide),
		PrintBackground: true,
	}
	if p.footer != "" {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = "<span></span>"
		opts.FooterTemplate = p.footer
	}
	return opts
}

// Close shuts the browser down and kills any leftover child processes.
func (e *rodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := shutdown(e.launcher, e.browser)
	e.launcher, e.browser = nil, nil
	return err
}

func shutdown(l *launcher.Launcher, b *rod.Browser) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		if pid := l.PID(); pid > 0 {
			_ = process.KillTree(pid)
		}
		l.Cleanup()
	}
	return err
}

// noSandbox reports whether Chrome must run without its sandbox, which is
// required in most containers and CI runners.
func noSandbox() bool {
	return os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true"
}

func floatPtr(v float64) *float64 {
	return &v
}
