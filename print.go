package cvbuilder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
	"github.com/alnah/go-cvbuilder/internal/layout"
)

// PrintOpener shows a print-ready page to the user, usually by opening it
// in a browser that then runs the print dialog.
type PrintOpener interface {
	Open(ctx context.Context, url string) error
}

// PrintOpenerFunc adapts a function to PrintOpener.
type PrintOpenerFunc func(ctx context.Context, url string) error

// Open calls f.
func (f PrintOpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// BrowserOpener opens pages with the desktop's default browser, or with the
// command in $BROWSER when set.
type BrowserOpener struct {
	// Command overrides $BROWSER and the platform default.
	Command string
}

var _ PrintOpener = (*BrowserOpener)(nil)

// Open starts the browser without waiting for it to exit. A browser that
// cannot be started yields ErrPopupBlocked.
func (o *BrowserOpener) Open(ctx context.Context, url string) error {
	name, args := o.command(runtime.GOOS)
	if name == "" {
		return fmt.Errorf("%w: no browser command for %s", ErrPopupBlocked, runtime.GOOS)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	// The browser outlives the export, so it is not bound to ctx.
	cmd := exec.Command(name, append(args, url)...) // #nosec G204 -- user-chosen browser
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Program returns the executable Open would start, or "" when the
// platform has none.
func (o *BrowserOpener) Program() string {
	name, _ := o.command(runtime.GOOS)
	return name
}

func (o *BrowserOpener) command(goos string) (string, []string) {
	cmd := o.Command
	if cmd == "" {
		cmd = os.Getenv("BROWSER")
	}
	if fields := strings.Fields(cmd); len(fields) > 0 {
		return fields[0], fields[1:]
	}

	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", nil
	}
	return "", nil
}

// PrintDocument turns a rendered CV page into a print-ready document: it
// sizes the page, keeps colors, and opens the print dialog on load.
func PrintDocument(rendered string, page *PageSettings) string {
	out := layout.InjectCSS(rendered, buildPageCSS(page)+printCSS)
	return layout.InjectScript(out, printScript)
}

// writePrintFile stores a print document where a browser can load it after
// the export returns. The file is left in place for the browser.
func writePrintFile(doc string) (string, error) {
	path, _, err := fileutil.WriteTempFile(doc, ExportPrint.Ext())
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs, nil
}
