package cvbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Rasterizer turns a complete HTML document into PDF bytes.
// Implementations must honor ctx cancellation.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, html string, page *PageSettings) ([]byte, error)
}

// Starter is implemented by engines that need to bring up a browser before
// the first Rasterize call. Start must be idempotent.
type Starter interface {
	Start(ctx context.Context) error
}

// EngineChain picks the first PDF engine that starts. Each engine gets
// loadTimeout to come up; when every engine fails, the chain waits recheck
// and tries them all once more before reporting ErrRasterizerUnavailable.
// The engine that started is remembered for later exports.
type EngineChain struct {
	engines     []Rasterizer
	loadTimeout time.Duration
	recheck     time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	active Rasterizer
}

// NewEngineChain creates a chain over engines, tried in order.
func NewEngineChain(loadTimeout, recheck time.Duration, logger *slog.Logger, engines ...Rasterizer) *EngineChain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EngineChain{
		engines:     engines,
		loadTimeout: loadTimeout,
		recheck:     recheck,
		logger:      logger,
	}
}

// Engines returns the engine names in order.
func (c *EngineChain) Engines() []string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return names
}

// Resolve returns a started engine.
func (c *EngineChain) Resolve(ctx context.Context) (Rasterizer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return c.active, nil
	}
	if len(c.engines) == 0 {
		return nil, fmt.Errorf("%w: no engines configured", ErrRasterizerUnavailable)
	}

	errs := make([]error, 0, 2*len(c.engines))
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.logger.Debug("re-checking PDF engines", "delay", c.recheck)
			if err := sleep(ctx, c.recheck); err != nil {
				return nil, err
			}
		}
		for _, e := range c.engines {
			err := c.start(ctx, e)
			if err == nil {
				c.logger.Debug("PDF engine ready", "engine", e.Name(), "attempt", attempt+1)
				c.active = e
				return e, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debug("PDF engine unavailable", "engine", e.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrRasterizerUnavailable, errors.Join(errs...))
}

// Reset forgets the active engine so the next Resolve probes again. Used
// after an engine fails mid-render.
func (c *EngineChain) Reset() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

func (c *EngineChain) start(ctx context.Context, e Rasterizer) error {
	s, ok := e.(Starter)
	if !ok {
		return nil
	}
	loadCtx := ctx
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}
	return s.Start(loadCtx)
}

// Close releases every engine that holds resources.
func (c *EngineChain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = nil
	var errs []error
	for _, e := range c.engines {
		if cl, ok := e.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
