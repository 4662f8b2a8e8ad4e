package cvbuilder

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakePDF is returned by fake engines. It is not a parseable PDF.
var fakePDF = []byte("%PDF-1.7 fake")

// fakeEngine is a Rasterizer and Starter whose behavior is set per test.
type fakeEngine struct {
	name     string
	startErr error
	data     []byte
	err      error

	// block, when set, makes Rasterize wait for it or for ctx.
	block chan struct{}
	// entered receives a value each time Rasterize is called.
	entered chan struct{}

	starts atomic.Int32
	calls  atomic.Int32

	mu       sync.Mutex
	lastHTML string
	lastPage *PageSettings
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Start(ctx context.Context) error {
	f.starts.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.startErr
}

func (f *fakeEngine) Rasterize(ctx context.Context, html string, page *PageSettings) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastHTML, f.lastPage = html, page
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeEngine) last() (string, *PageSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHTML, f.lastPage
}

// workingEngine returns an engine that always produces fakePDF.
func workingEngine(name string) *fakeEngine {
	return &fakeEngine{name: name, data: fakePDF}
}

// brokenEngine returns an engine that never starts.
func brokenEngine(name string) *fakeEngine {
	return &fakeEngine{name: name, startErr: errors.New(name + " not installed")}
}

// recordingOpener counts print pages opened and removes them afterwards.
type recordingOpener struct {
	err error

	mu   sync.Mutex
	urls []string
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	o.urls = append(o.urls, url)
	o.mu.Unlock()
	return o.err
}

func (o *recordingOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.urls)
}

func (o *recordingOpener) cleanup() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, u := range o.urls {
		_ = os.Remove(strings.TrimPrefix(u, "file://"))
	}
}

// withRecheck shortens the engine re-check delay.
func withRecheck(d time.Duration) Option {
	return func(b *Builder) {
		b.cfg.recheck = d
	}
}

// newTestBuilder returns a Builder with no settle delay, a short re-check
// and opener as its print opener. Engines default to one working fake.
func newTestBuilder(t *testing.T, opener *recordingOpener, opts ...Option) *Builder {
	t.Helper()

	if opener == nil {
		opener = &recordingOpener{}
	}
	t.Cleanup(opener.cleanup)

	base := []Option{
		WithSettleDelay(0),
		WithLoadTimeout(time.Second),
		withRecheck(time.Millisecond),
		WithPrintOpener(opener),
		WithRasterizers(workingEngine("fake")),
	}
	b, err := NewBuilder(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// sampleDocument is a filled-in CV.
func sampleDocument() Document {
	return Document{
		Name:       "Jane Doe",
		Title:      "Backend Engineer",
		Contact:    "jane@example.com\n+1 555-123-4567\n🔗 https://linkedin.com/in/jane",
		Content:    "## Experience\n\n- Built the billing service\n- Led a team of 4",
		Highlights: "- 10 years of Go",
		Format:     "markdown",
	}
}

// stubLoader serves a single template from memory.
type stubLoader struct {
	key  string
	tmpl string
}

func (s stubLoader) LoadStyle(string) (string, error) { return "", nil }

func (s stubLoader) LoadTemplate(name string) (string, error) {
	if name != s.key {
		return "", ErrTemplateNotFound
	}
	return s.tmpl, nil
}

func (s stubLoader) ListTemplates() ([]string, error) { return []string{s.key}, nil }
