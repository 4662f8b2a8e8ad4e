package cvbuilder

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one builder is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// BuilderPool holds up to size Builders for batch exports. Each Builder
// owns its own browser, and exports are serialized per Builder, so the pool
// size is the export parallelism. Builders are created on first Acquire.
type BuilderPool struct {
	size     int
	opts     []Option
	builders []*Builder
	sem      chan *Builder
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewBuilderPool creates a pool of n Builders configured with opts.
func NewBuilderPool(n int, opts ...Option) *BuilderPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &BuilderPool{
		size:     n,
		opts:     opts,
		builders: make([]*Builder, 0, n),
		sem:      make(chan *Builder, n),
	}
}

// Acquire returns an idle Builder, creating one while under capacity, and
// blocks when all are busy.
func (p *BuilderPool) Acquire() (*Builder, error) {
	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrBuilderClosed
		}
		return b, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrBuilderClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		b, err := NewBuilder(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			// Close already took its snapshot of builders.
			p.mu.Unlock()
			_ = b.Close()
			return nil, ErrBuilderClosed
		}
		p.builders = append(p.builders, b)
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	b, ok := <-p.sem
	if !ok {
		return nil, ErrBuilderClosed
	}
	return b, nil
}

// Release returns b to the pool. Releasing after Close is a no-op.
func (p *BuilderPool) Release(b *Builder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// sem holds every created builder, so this send never blocks.
	p.sem <- b
}

// Close closes every Builder and joins their errors.
func (p *BuilderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	for range p.sem {
	}
	builders := p.builders
	p.mu.Unlock()

	var errs []error
	for _, b := range builders {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *BuilderPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, MinPoolSize), MaxPoolSize)
}
