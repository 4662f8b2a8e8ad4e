package cvbuilder_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-cvbuilder"
)

// Example demonstrates rendering a CV to a standalone HTML page.
// Rendering never starts a browser.
func Example() {
	b, err := cvbuilder.NewBuilder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer b.Close()

	html, err := b.Render(context.Background(), cvbuilder.Document{
		Name:    "Jane Doe",
		Title:   "Backend Engineer",
		Contact: "jane@example.com",
		Content: "## Experience\n- Built the billing pipeline",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(html, `href="mailto:jane@example.com"`) {
		fmt.Println("HTML rendered with a mail link")
	}
	// Output: HTML rendered with a mail link
}

// Example_template demonstrates picking a layout and plain-text content.
func Example_template() {
	b, err := cvbuilder.NewBuilder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer b.Close()

	html, err := b.Render(context.Background(), cvbuilder.Document{
		Name:     "Jane Doe",
		Content:  "Ten years of backend work.\n\nMostly Go.",
		Template: "sidebar",
		Format:   "text",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(html, "Mostly Go.") {
		fmt.Println("Sidebar layout rendered")
	}
	// Output: Sidebar layout rendered
}

// Example_text demonstrates exporting plain text.
func Example_text() {
	b, err := cvbuilder.NewBuilder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer b.Close()

	res, err := b.Export(context.Background(), cvbuilder.Document{
		Name:  "Jane Doe",
		Title: "Backend Engineer",
	}, cvbuilder.ExportText)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(res.Kind.Ext(), strings.Contains(string(res.Data), "Jane Doe"))
	// Output: txt true
}

// Example_customCSS demonstrates appending CSS after the template style.
func Example_customCSS() {
	b, err := cvbuilder.NewBuilder(cvbuilder.WithCSS(".cv-name { color: #2c3e50; }"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer b.Close()

	html, err := b.Render(context.Background(), cvbuilder.Document{Name: "Jane Doe"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(html, "#2c3e50") {
		fmt.Println("Custom CSS injected")
	}
	// Output: Custom CSS injected
}

// offlineEngine is a PDF engine whose browser never starts.
type offlineEngine struct{}

func (offlineEngine) Name() string { return "offline" }

func (offlineEngine) Rasterize(context.Context, string, *cvbuilder.PageSettings) ([]byte, error) {
	return nil, errors.New("browser not installed")
}

// Example_printFallback demonstrates the print path taken when no PDF
// engine works. The opener here deletes the page instead of starting a
// browser.
func Example_printFallback() {
	opened := 0
	b, err := cvbuilder.NewBuilder(
		cvbuilder.WithSettleDelay(0),
		cvbuilder.WithRasterizers(offlineEngine{}),
		cvbuilder.WithPrintOpener(cvbuilder.PrintOpenerFunc(func(_ context.Context, url string) error {
			opened++
			return os.Remove(strings.TrimPrefix(url, "file://"))
		})),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer b.Close()

	res, err := b.Export(context.Background(), cvbuilder.Document{Name: "Jane Doe"}, cvbuilder.ExportPDF)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(res.Kind, res.FellBack, opened)
	// Output: print true 1
}
