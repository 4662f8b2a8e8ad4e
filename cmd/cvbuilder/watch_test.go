package main

// Notes:
// - watchLoop is driven through plain channels so debounce behavior is
//   tested without a file system watcher.
// - TestRunWatch uses a real fsnotify watcher on a temp dir and polls the
//   output file, with a generous deadline.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func matchName(want string) func(string) bool {
	return func(name string) bool { return name == want }
}

// startLoop runs watchLoop in the background and returns the event channel,
// the rebuild counter and a channel closed when the loop returns.
func startLoop(ctx context.Context, debounce time.Duration) (chan fsnotify.Event, chan error, *atomic.Int32, chan error) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	var rebuilds atomic.Int32
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	go func() {
		done <- watchLoop(ctx, events, errs, matchName("cv.yaml"), debounce, func() { rebuilds.Add(1) }, logger)
	}()
	return events, errs, &rebuilds, done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ---------------------------------------------------------------------------
// TestWatchLoop - Debounce and filtering
// ---------------------------------------------------------------------------

func TestWatchLoop_CoalescesBursts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, rebuilds, done := startLoop(ctx, 50*time.Millisecond)

	for range 3 {
		events <- fsnotify.Event{Name: "cv.yaml", Op: fsnotify.Write}
	}
	waitFor(t, func() bool { return rebuilds.Load() == 1 })

	time.Sleep(150 * time.Millisecond)
	if n := rebuilds.Load(); n != 1 {
		t.Errorf("rebuilds = %d, want 1 for a single burst", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchLoop() = %v, want nil on cancel", err)
	}
}

func TestWatchLoop_IgnoresUnrelatedEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, errs, rebuilds, done := startLoop(ctx, 10*time.Millisecond)

	events <- fsnotify.Event{Name: "other.yaml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "cv.yaml", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: "cv.yaml", Op: fsnotify.Remove}
	errs <- errors.New("queue overflow")

	time.Sleep(100 * time.Millisecond)
	if n := rebuilds.Load(); n != 0 {
		t.Errorf("rebuilds = %d, want 0", n)
	}

	events <- fsnotify.Event{Name: "cv.yaml", Op: fsnotify.Rename}
	waitFor(t, func() bool { return rebuilds.Load() == 1 })

	cancel()
	<-done
}

func TestWatchLoop_ClosedChannel(t *testing.T) {
	t.Parallel()

	events, _, _, done := startLoop(context.Background(), time.Second)
	close(events)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchLoop() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchLoop did not return after events closed")
	}
}

// ---------------------------------------------------------------------------
// TestParseDebounce
// ---------------------------------------------------------------------------

func TestParseDebounce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", defaultDebounce, false},
		{"0", 0, false},
		{"250ms", 250 * time.Millisecond, false},
		{"-1s", 0, true},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDebounce(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDebounce(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDebounce(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunWatch - End to end
// ---------------------------------------------------------------------------

func TestRunWatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no input", []string{"watch"}, ExitIO},
		{"print kind", []string{"watch", "cv.yaml", "--kind", "print"}, ExitUsage},
		{"bad debounce", []string{"watch", "cv.yaml", "--debounce", "soon"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, nil)
			if code := te.run(tt.args...); code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.want, te.stderr)
			}
		})
	}
}

func TestRunWatch(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	cv := te.writeFile(t, "cv.yaml", sampleYAML)
	out := filepath.Join(te.dir, "cv.html")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, []string{cv, "--debounce", "20ms"}, te.Environment)
	}()

	contains := func(s string) func() bool {
		return func() bool {
			data, err := os.ReadFile(out)
			return err == nil && strings.Contains(string(data), s)
		}
	}
	waitFor(t, contains("Jane Doe"))

	updated := strings.Replace(sampleYAML, "Jane Doe", "Janet Doe", 1)
	if err := os.WriteFile(cv, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, contains("Janet Doe"))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
	if !strings.Contains(te.stderr.String(), "Watching "+cv) {
		t.Errorf("stderr = %q", te.stderr)
	}
}
