package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-cvbuilder"
)

// defaultDebounce is the quiet period after the last change before a
// rebuild. Editors often write a file in several steps.
const defaultDebounce = 500 * time.Millisecond

// rebuildOps are the events that can change a watched file's content.
const rebuildOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// runWatch rebuilds a document's export every time the document (or the
// extra CSS file) changes, until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: watch needs exactly one document file", ErrNoInput)
	}
	kind, err := cvbuilder.ParseExportKind(flags.kind)
	if err != nil {
		return err
	}
	if kind == cvbuilder.ExportPrint {
		return fmt.Errorf("%w: watch cannot open a print window on every change, use --kind pdf", ErrUsage)
	}
	debounce, err := parseDebounce(flags.debounce)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig(env)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeAssetFlags(flags.assets, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, envCfg, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	opts, err := builderOptions(cfg, flags.assets.css, timeout, logger, env, cvbuilder.WithPrintOpener(noOpen))
	if err != nil {
		return err
	}
	b, err := cvbuilder.NewBuilder(opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	source := positional[0]
	rebuild := func() {
		doc, _, err := resolveDocument(positional, flags.document, cfg)
		if err == nil {
			out := resolveOutputPath(flags.output, source, doc.Name, kind, cfg.Output.DefaultDir)
			var o *exportOutcome
			if o, err = exportTo(ctx, b, doc, kind, out, env.Now); err == nil {
				if !flags.common.quiet {
					fmt.Fprintf(env.Stderr, "[%s] Updated %s\n", env.Now().Format(time.TimeOnly), o.Path)
				}
				if o.Result.FellBack {
					fmt.Fprintf(env.Stderr, "warning: PDF export failed: %v\n", o.Result.Cause)
				}
				return
			}
		}
		if ctx.Err() == nil {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
	}

	targets := []string{source}
	if flags.assets.css != "" {
		targets = append(targets, flags.assets.css)
	}
	watcher, matches, err := newWatcher(targets)
	if err != nil {
		return err
	}
	defer watcher.Close()

	rebuild()
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Watching %s (Ctrl-C to stop)\n", source)
	}
	return watchLoop(ctx, watcher.Events, watcher.Errors, matches, debounce, rebuild, logger)
}

// parseDebounce parses --debounce. Empty means defaultDebounce.
func parseDebounce(s string) (time.Duration, error) {
	if s == "" {
		return defaultDebounce, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: --debounce %q", ErrUsage, s)
	}
	return d, nil
}

// newWatcher watches the directories holding targets rather than the files
// themselves, so a file replaced by rename (as most editors save) is still
// seen. matches reports whether an event path is one of the targets.
func newWatcher(targets []string) (*fsnotify.Watcher, func(string) bool, error) {
	want := make(map[string]bool, len(targets))
	dirs := make(map[string]bool, len(targets))
	for _, t := range targets {
		abs, err := filepath.Abs(t)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", t, err)
		}
		want[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("starting file watcher: %w", err)
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	matches := func(name string) bool {
		abs, err := filepath.Abs(name)
		return err == nil && want[abs]
	}
	return w, matches, nil
}

// watchLoop calls rebuild once events for matching paths have stopped for
// the debounce period. It returns when ctx is done or events is closed.
// Watcher errors are logged and do not stop the loop.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	matches func(string) bool, debounce time.Duration, rebuild func(), logger *slog.Logger,
) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&rebuildOps == 0 || !matches(ev.Name) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			rebuild()
		}
	}
}
