package cvbuilder

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Builder, error)
	Release(*Builder)
	Size() int
	Close() error
} = (*BuilderPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// testPoolOptions keeps pooled builders away from real browsers.
func testPoolOptions() []Option {
	return []Option{
		WithSettleDelay(0),
		WithRasterizers(workingEngine("fake")),
		WithPrintOpener(&recordingOpener{}),
	}
}

func TestBuilderPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewBuilderPool(2, testPoolOptions()...)
	defer pool.Close()

	b1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	b2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if b1 == b2 {
		t.Error("expected different builder instances")
	}

	pool.Release(b1)
	b3, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if b3 != b1 {
		t.Error("expected to get back released builder")
	}

	pool.Release(b2)
	pool.Release(b3)
}

func TestBuilderPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewBuilderPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuilderPool_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pool := NewBuilderPool(3, testPoolOptions()...)
	defer pool.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			time.Sleep(2 * time.Millisecond)
			pool.Release(b)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent access timed out, possible deadlock")
	}
}

func TestBuilderPool_InvalidOptions(t *testing.T) {
	t.Parallel()

	pool := NewBuilderPool(1, WithAssetPath("/nonexistent/cvbuilder/assets"))
	defer pool.Close()

	for range 2 {
		if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("Acquire() error = %v, want ErrInvalidAssetPath", err)
		}
	}
}

func TestBuilderPool_Close(t *testing.T) {
	t.Parallel()

	pool := NewBuilderPool(2, testPoolOptions()...)

	b, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	pool.Release(b) // no-op after close
	if _, err := pool.Acquire(); !errors.Is(err, ErrBuilderClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrBuilderClosed", err)
	}
	if _, err := b.Export(t.Context(), sampleDocument(), ExportHTML); !errors.Is(err, ErrBuilderClosed) {
		t.Errorf("pooled builder should be closed, Export() error = %v", err)
	}
}

func TestBuilderPool_CloseDuringCreate(t *testing.T) {
	t.Parallel()

	entered := make(chan *Builder, 1)
	proceed := make(chan struct{})
	blockNew := func(b *Builder) {
		entered <- b
		<-proceed
	}
	pool := NewBuilderPool(1, append(testPoolOptions(), blockNew)...)

	errc := make(chan error, 1)
	go func() {
		_, err := pool.Acquire()
		errc <- err
	}()

	var created *Builder
	select {
	case created = <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("Acquire never started creating a builder")
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	close(proceed)

	select {
	case err := <-errc:
		if !errors.Is(err, ErrBuilderClosed) {
			t.Errorf("Acquire() error = %v, want ErrBuilderClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Acquire did not return after Close")
	}
	if _, err := created.Export(t.Context(), sampleDocument(), ExportHTML); !errors.Is(err, ErrBuilderClosed) {
		t.Errorf("builder created during Close should be closed, Export() error = %v", err)
	}
}
