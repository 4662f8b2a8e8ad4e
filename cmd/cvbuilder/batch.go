package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
)

// Sentinel errors for batch exports.
var (
	ErrBatchFailed = errors.New("batch export failed")
	ErrBuilderInit = errors.New("failed to initialize builder")
)

// Pool abstracts builder pool operations for testability.
type Pool interface {
	Acquire() (*cvbuilder.Builder, error)
	Release(*cvbuilder.Builder)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*cvbuilder.BuilderPool)(nil)

// batchJob exports one source with the worker's Exporter.
type batchJob func(ctx context.Context, e Exporter, source string) (*exportOutcome, error)

// batchResult holds the outcome of a single export in a batch.
type batchResult struct {
	Source  string
	Outcome *exportOutcome
	Err     error
}

// runBatchExport exports several documents in parallel, one Builder per
// worker. -o names a directory.
func runBatchExport(ctx context.Context, sources []string, flags *exportFlags, cfg *config.Config,
	kind cvbuilder.ExportKind, opts []cvbuilder.Option, env *Environment,
) error {
	if kind == cvbuilder.ExportPrint {
		return fmt.Errorf("%w: print exports take a single document", ErrUsage)
	}

	outDir := flags.output
	if outDir != "" && !strings.HasSuffix(outDir, "/") && !strings.HasSuffix(outDir, string(filepath.Separator)) {
		outDir += string(filepath.Separator)
	}

	pool := cvbuilder.NewBuilderPool(min(cvbuilder.ResolvePoolSize(flags.workers), len(sources)), opts...)
	defer pool.Close()

	results := exportBatch(ctx, pool, sources, func(ctx context.Context, e Exporter, source string) (*exportOutcome, error) {
		doc, _, err := resolveDocument([]string{source}, flags.document, cfg)
		if err != nil {
			return nil, err
		}
		out := resolveOutputPath(outDir, source, doc.Name, kind, cfg.Output.DefaultDir)
		return exportTo(ctx, e, doc, kind, out, env.Now)
	})

	if failed := reportBatch(env, flags.common, results); failed > 0 {
		return fmt.Errorf("%w: %d of %d exports failed", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// exportBatch runs job for every source on at most pool.Size() workers.
// Results keep the order of sources.
func exportBatch(ctx context.Context, pool Pool, sources []string, job batchJob) []batchResult {
	if len(sources) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(sources))
	results := make([]batchResult, len(sources))
	jobs := make(chan int, len(sources))
	for i := range sources {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b, err := pool.Acquire()
			if err != nil {
				// Builder creation failed, mark the jobs this worker takes as failed
				for idx := range jobs {
					results[idx] = batchResult{Source: sources[idx], Err: fmt.Errorf("%w: %v", ErrBuilderInit, err)}
				}
				return
			}
			defer pool.Release(b)

			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = batchResult{Source: sources[idx], Err: err}
					continue
				}
				o, err := job(ctx, b, sources[idx])
				results[idx] = batchResult{Source: sources[idx], Outcome: o, Err: err}
			}
		}()
	}

	wg.Wait()
	return results
}

// reportBatch prints one line per export and a summary, and returns the
// number of failures. Failures are printed even with --quiet.
func reportBatch(env *Environment, f commonFlags, results []batchResult) int {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Source, r.Err)
			continue
		}
		if f.quiet {
			continue
		}

		if res := r.Outcome.Result; res.FellBack {
			fmt.Fprintf(env.Stderr, "warning: %s: PDF export failed: %v\n", r.Source, res.Cause)
		}
		if f.verbose {
			fmt.Fprintf(env.Stderr, "%s -> %s (%v)\n", r.Source, r.Outcome.Path, r.Outcome.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stderr, "Created %s\n", r.Outcome.Path)
		}
	}

	if !f.quiet {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
