package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
	"github.com/alnah/go-cvbuilder/internal/fileutil"
)

// noOpen keeps print pages on disk instead of opening a browser.
var noOpen = cvbuilder.PrintOpenerFunc(func(context.Context, string) error { return nil })

// Exporter is the part of cvbuilder.Builder the export and watch commands
// use.
type Exporter interface {
	Export(ctx context.Context, doc cvbuilder.Document, kind cvbuilder.ExportKind) (*cvbuilder.ExportResult, error)
}

// Compile-time interface implementation check.
var _ Exporter = (*cvbuilder.Builder)(nil)

// exportOutcome describes a finished export for reporting.
type exportOutcome struct {
	Path     string
	Result   *cvbuilder.ExportResult
	Duration time.Duration
}

// runExport exports a document, or the draft, as pdf, print, html or txt.
// Several documents are exported in parallel.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	kind, err := cvbuilder.ParseExportKind(flags.kind)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig(env)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeExportFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, envCfg, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	var extra []cvbuilder.Option
	if flags.noOpen {
		extra = append(extra, cvbuilder.WithPrintOpener(noOpen))
	}
	opts, err := builderOptions(cfg, flags.assets.css, timeout, logger, env, extra...)
	if err != nil {
		return err
	}

	if len(positional) > 1 {
		return runBatchExport(ctx, positional, flags, cfg, kind, opts, env)
	}

	doc, source, err := resolveDocument(positional, flags.document, cfg)
	if err != nil {
		return err
	}
	b, err := cvbuilder.NewBuilder(opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	out := resolveOutputPath(flags.output, source, doc.Name, kind, cfg.Output.DefaultDir)
	outcome, err := exportTo(ctx, b, doc, kind, out, env.Now)
	if err != nil {
		return err
	}
	reportExport(env, flags.common, outcome, !flags.noOpen)
	return nil
}

// mergeExportFlags applies export flags to cfg (CLI wins).
func mergeExportFlags(f *exportFlags, cfg *config.Config) {
	mergeAssetFlags(f.assets, cfg)
	mergePageFlags(f.page, cfg)
	mergeFooterFlags(f.footer, cfg)
	if f.verify {
		cfg.Export.Verify = true
	}
	if len(f.engines) > 0 {
		cfg.Export.Engines = f.engines
	}
}

// exportTo runs one export and writes it to out. When the PDF path fell
// back to printing, the print page is written next to out with its own
// extension instead.
func exportTo(ctx context.Context, e Exporter, doc cvbuilder.Document, kind cvbuilder.ExportKind, out string, now func() time.Time) (*exportOutcome, error) {
	start := now()
	res, err := e.Export(ctx, doc, kind)
	if err != nil {
		return nil, err
	}
	if res.Kind != kind {
		out = fileutil.ReplaceExt(out, res.Kind.Ext())
	}
	if err := writeOutput(out, res.Data); err != nil {
		return nil, err
	}
	return &exportOutcome{Path: out, Result: res, Duration: now().Sub(start)}, nil
}

// reportExport prints the outcome unless --quiet is set.
func reportExport(env *Environment, f commonFlags, o *exportOutcome, opened bool) {
	if f.quiet {
		return
	}
	res := o.Result

	if res.FellBack {
		fmt.Fprintf(env.Stderr, "warning: PDF export failed: %v\n", res.Cause)
		if opened {
			fmt.Fprintln(env.Stderr, "Opened the print page instead; use the browser's \"Save as PDF\".")
		}
	}

	switch {
	case res.Kind == cvbuilder.ExportPrint && opened:
		fmt.Fprintf(env.Stderr, "Created %s (opened for printing)\n", o.Path)
	default:
		fmt.Fprintf(env.Stderr, "Created %s\n", o.Path)
	}

	if f.verbose {
		if res.Engine != "" {
			fmt.Fprintf(env.Stderr, "  engine: %s\n", res.Engine)
		}
		fmt.Fprintf(env.Stderr, "  took: %v\n", o.Duration.Round(time.Millisecond))
	}
}
