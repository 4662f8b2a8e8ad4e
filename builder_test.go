package cvbuilder

// Notes:
// - Render: every embedded template is rendered with a filled-in document
// - placeholders: an empty Document still renders a complete page
// - option validation happens in NewBuilder, not at export time

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-cvbuilder/internal/dateutil"
)

// ---------------------------------------------------------------------------
// TestNewBuilder - Construction and validation
// ---------------------------------------------------------------------------

func TestNewBuilder_Defaults(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	defer b.Close()

	want := []string{EngineRod, EngineRodManaged, EngineChromedp}
	got := b.Engines()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Engines() = %v, want %v", got, want)
	}
	if b.Exporting() {
		t.Error("new builder should not be exporting")
	}
}

func TestNewBuilder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "missing asset directory",
			opts:    []Option{WithAssetPath("/nonexistent/cvbuilder/assets")},
			wantErr: ErrInvalidAssetPath,
		},
		{
			name:    "unknown page size",
			opts:    []Option{WithPageSettings(&PageSettings{Size: "a3", Orientation: OrientationPortrait})},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unknown orientation",
			opts:    []Option{WithPageSettings(&PageSettings{Size: PageSizeA4, Orientation: "diagonal"})},
			wantErr: ErrInvalidOrientation,
		},
		{
			name:    "margin out of range",
			opts:    []Option{WithPageSettings(&PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 3})},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "malformed footer date",
			opts:    []Option{WithFooter(&Footer{Updated: "auto:[YYYY"})},
			wantErr: dateutil.ErrInvalidDateFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBuilder(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewBuilder() error = %v, want %v", err, tt.wantErr)
			}
			if b != nil {
				t.Error("NewBuilder() should return nil on error")
			}
		})
	}
}

func TestOptions_PanicOnInvalidDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"zero timeout", func() { WithTimeout(0) }},
		{"negative timeout", func() { WithTimeout(-time.Second) }},
		{"negative settle delay", func() { WithSettleDelay(-time.Millisecond) }},
		{"zero load timeout", func() { WithLoadTimeout(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestRasterizersByName(t *testing.T) {
	t.Parallel()

	rs, err := RasterizersByName([]string{"chromedp", "ROD"}, time.Second)
	if err != nil {
		t.Fatalf("RasterizersByName() error = %v", err)
	}
	if len(rs) != 2 || rs[0].Name() != EngineChromedp || rs[1].Name() != EngineRod {
		t.Errorf("RasterizersByName() = %v", rs)
	}

	rs, err = RasterizersByName(nil, time.Second)
	if err != nil || len(rs) != 3 {
		t.Errorf("RasterizersByName(nil) = %d engines, %v; want defaults", len(rs), err)
	}

	if _, err := RasterizersByName([]string{"wkhtmltopdf"}, time.Second); !errors.Is(err, ErrRasterizerUnavailable) {
		t.Errorf("unknown engine error = %v, want ErrRasterizerUnavailable", err)
	}
}

// ---------------------------------------------------------------------------
// TestRender - Template dispatch and field formatting
// ---------------------------------------------------------------------------

func TestRender_EveryTemplate(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil)
	keys, err := b.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	if len(keys) != 6 {
		t.Fatalf("Templates() = %v, want 6 layouts", keys)
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			doc := sampleDocument()
			doc.Template = key

			got, err := b.Render(context.Background(), doc)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range []string{
				"<title>CV - Jane Doe</title>",
				"<style>",
				"Jane Doe",
				"Backend Engineer",
				`<a href="mailto:jane@example.com">jane@example.com</a>`,
				`<a href="tel:+15551234567">`,
				"LinkedIn Profile",
				"<h2>Experience</h2>",
				"<li>Built the billing service</li>",
				"10 years of Go",
			} {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) missing %q", key, want)
				}
			}
		})
	}
}

func TestRender_Placeholders(t *testing.T) {
	t.Parallel()

	got, err := newTestBuilder(t, nil).Render(context.Background(), Document{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"Your Name",
		"Your Job Title",
		"Your contact information",
		"Enter your CV content in the editor...",
		"📸 Photo",
		"cv-classic",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render(empty) missing %q", want)
		}
	}
	if strings.Contains(got, "cv-highlights") {
		t.Error("empty highlights should not render a block")
	}
}

func TestRender_View(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil)
	ctx := context.Background()

	doc := sampleDocument()
	doc.View = View{HidePhoto: true, Compact: true}
	got, err := b.Render(ctx, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, `class="cv-photo"`) {
		t.Error("HidePhoto should remove the photo frame")
	}
	if !strings.Contains(got, "cv-compact") {
		t.Error("Compact should add the cv-compact class")
	}

	doc.View = View{}
	doc.Photo = "data:image/png;base64,iVBORw0KGgo="
	got, err = b.Render(ctx, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, `<img src="data:image/png;base64,iVBORw0KGgo=" alt="Profile photo">`) {
		t.Error("photo should render as an image")
	}

	doc.Photo = "javascript:alert(1)"
	got, err = b.Render(ctx, doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "javascript:") {
		t.Error("unsafe photo URL should be dropped")
	}
}

func TestRender_Formats(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil)

	tests := []struct {
		name    string
		format  string
		content string
		want    string
		reject  string
	}{
		{
			name:    "html is sanitized",
			format:  "html",
			content: `<h3>Skills</h3><script>alert(1)</script>`,
			want:    "<h3>Skills</h3>",
			reject:  "alert(1)",
		},
		{
			name:    "markdown",
			format:  "markdown",
			content: "**Go** and `SQL`",
			want:    "<strong>Go</strong>",
		},
		{
			name:    "text bullets",
			format:  "text",
			content: "Skills\n• Go\n• SQL",
			want:    "<li>Go</li>",
		},
		{
			name:    "empty format is markdown",
			format:  "",
			content: "# Title",
			want:    "<h1>Title</h1>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := b.Render(context.Background(), Document{Content: tt.content, Format: tt.format})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render() missing %q", tt.want)
			}
			if tt.reject != "" && strings.Contains(got, tt.reject) {
				t.Errorf("Render() should not contain %q", tt.reject)
			}
		})
	}
}

func TestRender_EscapesHeader(t *testing.T) {
	t.Parallel()

	got, err := newTestBuilder(t, nil).Render(context.Background(), Document{
		Name:    `<script>alert("x")</script>`,
		Contact: "<b>bold</b>",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "<script>") || strings.Contains(got, "<b>bold</b>") {
		t.Error("header fields must be escaped")
	}
	if !strings.Contains(got, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Error("contact markup should appear escaped")
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil)

	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{"unknown format", Document{Format: "latex"}, ErrUnknownFormat},
		{"unknown template", Document{Template: "baroque"}, ErrTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := b.Render(context.Background(), tt.doc); !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRender_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestBuilder(t, nil).Render(ctx, sampleDocument()); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestRender_ExtraCSS(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil, WithCSS(".cv-name { color: teal; }"))
	got, err := b.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, ".cv-name { color: teal; }") {
		t.Error("WithCSS rules should be inlined")
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, nil)
	doc := sampleDocument()

	first, err := b.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, _ := b.Render(context.Background(), doc)
	if first != second {
		t.Error("Render() should be a pure function of the document")
	}
}

func TestBuilder_PageSettingsFooter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	b := newTestBuilder(t, nil,
		WithPageSettings(&PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape, Margin: 1}),
		WithFooter(&Footer{Updated: "auto:iso", ShowPageNumber: true}),
	)
	b.cfg.now = func() time.Time { return now }

	page := b.pageSettings()
	if page.Size != PageSizeLetter || page.Margin != 1 {
		t.Errorf("pageSettings() = %+v", page)
	}
	if page.Footer == nil || page.Footer.Updated != "2026-03-09" {
		t.Errorf("footer date not resolved: %+v", page.Footer)
	}
	if b.cfg.footer.Updated != "auto:iso" {
		t.Error("pageSettings() must not modify the configured footer")
	}
}
