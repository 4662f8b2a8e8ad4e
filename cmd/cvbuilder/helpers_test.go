package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-cvbuilder"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fakes shared by the command tests
// ---------------------------------------------------------------------------

var fakePDF = []byte("%PDF-1.4 fake")

// fixedNow is the clock every test environment uses.
var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// stubEngine is a Rasterizer returning fixed data or a fixed error.
type stubEngine struct {
	data []byte
	err  error
}

func (e stubEngine) Name() string { return "stub" }

func (e stubEngine) Rasterize(ctx context.Context, _ string, _ *cvbuilder.PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.data, e.err
}

// recordingOpener records print URLs and removes the print files when the
// test ends.
type recordingOpener struct {
	mu   sync.Mutex
	urls []string
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return nil
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

// testEnv is an Environment with captured output and a private draft.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
	opener *recordingOpener
	dir    string
}

// newTestEnv returns an environment whose only variable is CVBUILDER_DRAFT,
// pointing into a temp dir, and whose Builder uses engine (working by
// default) and a recording opener.
func newTestEnv(t *testing.T, engine cvbuilder.Rasterizer) *testEnv {
	t.Helper()

	if engine == nil {
		engine = stubEngine{data: fakePDF}
	}
	dir := t.TempDir()
	opener := &recordingOpener{}
	t.Cleanup(opener.cleanup)

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   map[string]string{"CVBUILDER_DRAFT": filepath.Join(dir, "draft.json")},
		opener: opener,
		dir:    dir,
	}
	te.Environment = &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdin:   strings.NewReader(""),
		Stdout:  te.stdout,
		Stderr:  te.stderr,
		Getenv:  func(k string) string { return te.vars[k] },
		Environ: func() []string { return nil },
		BuilderOptions: []cvbuilder.Option{
			cvbuilder.WithSettleDelay(0),
			cvbuilder.WithLoadTimeout(time.Second),
			cvbuilder.WithRasterizers(engine),
			cvbuilder.WithPrintOpener(opener),
		},
	}
	return te
}

// run calls runMain with "cvbuilder" prepended.
func (te *testEnv) run(args ...string) int {
	return runMain(append([]string{"cvbuilder"}, args...), te.Environment)
}

// draftPath is the environment's draft file.
func (te *testEnv) draftPath() string {
	return te.vars["CVBUILDER_DRAFT"]
}

// writeFile writes content under the environment's temp dir and returns
// the path.
func (te *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(te.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const sampleYAML = `name: Jane Doe
title: Platform Engineer
contact: |
  jane@example.com
  +44 20 7946 0958
content: |
  ## Experience
  - Built the billing pipeline
highlights: |
  - Go
  - Kubernetes
template: modern
`

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
