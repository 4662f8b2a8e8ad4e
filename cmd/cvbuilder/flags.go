package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// marginUnset detects whether --margin was given, since 0 is a valid margin.
const marginUnset = -1.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags override the fields of a loaded document.
type documentFlags struct {
	draft    string // draft file used when no input is given
	template string
	format   string
	compact  bool
	noPhoto  bool
}

// assetFlags holds asset and styling flags.
type assetFlags struct {
	assetPath string
	css       string // extra CSS file appended after the template style
	engine    string // markdown engine: line, gfm
}

// pageFlags holds PDF page flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// footerFlags holds PDF footer flags.
type footerFlags struct {
	enabled    bool
	disabled   bool
	updated    string
	text       string
	pageNumber bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	output   string
	document documentFlags
	assets   assetFlags
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common   commonFlags
	output   string
	kind     string
	print    bool
	noOpen   bool
	verify   bool
	engines  []string
	timeout  string
	workers  int
	document documentFlags
	assets   assetFlags
	page     pageFlags
	footer   footerFlags
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	common   commonFlags
	output   string
	kind     string
	debounce string
	timeout  string
	document documentFlags
	assets   assetFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	addr     string
	draft    string
	autosave string
	open     bool
	timeout  string
	assets   assetFlags
}

// newFlagSet returns a FlagSet that reports parse errors through the
// returned error only, and prints usage on --help.
func newFlagSet(name string, usage func(io.Writer), w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs parses args and wraps failures in ErrUsage. --help is passed
// through unchanged.
func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show engine and timing details")
}

// addDocumentFlags adds document override flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.draft, "draft", "", "draft file used when no input is given")
	fs.StringVarP(&f.template, "template", "t", "", "template: classic, modern, minimal, executive, compact, sidebar")
	fs.StringVarP(&f.format, "format", "f", "", "content format: html, markdown, text")
	fs.BoolVar(&f.compact, "compact", false, "tighter spacing")
	fs.BoolVar(&f.noPhoto, "no-photo", false, "hide the photo frame")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.assetPath, "asset-path", "", "directory of custom templates")
	fs.StringVar(&f.css, "css", "", "extra CSS file")
	fs.StringVar(&f.engine, "md-engine", "", "markdown engine: line, gfm")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", marginUnset, "page margin in inches (0-2)")
}

// addFooterFlags adds footer flags to a FlagSet.
func addFooterFlags(fs *flag.FlagSet, f *footerFlags) {
	fs.BoolVar(&f.enabled, "footer", false, "print a footer line")
	fs.BoolVar(&f.disabled, "no-footer", false, "disable the footer")
	fs.StringVar(&f.updated, "updated", "", "footer date: literal, \"auto\" or \"auto:FORMAT\"")
	fs.StringVar(&f.text, "footer-text", "", "custom footer text")
	fs.BoolVar(&f.pageNumber, "page-number", false, "show page numbers in footer")
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", printRenderUsage, w)

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addAssetFlags(fs, &f.assets)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newFlagSet("export", printExportUsage, w)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.kind, "kind", "k", "pdf", "export kind: pdf, print, html, txt")
	fs.BoolVar(&f.print, "print", false, "shorthand for --kind print")
	fs.BoolVar(&f.noOpen, "no-open", false, "never open a browser window")
	fs.BoolVar(&f.verify, "verify", false, "check the PDF contains the CV text")
	fs.StringSliceVar(&f.engines, "engine", nil, "PDF engines in order: rod, rod-managed, chromedp")
	fs.StringVar(&f.timeout, "timeout", "", "export timeout (e.g., 30s, 1m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports for several inputs (default: auto)")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addAssetFlags(fs, &f.assets)
	addPageFlags(fs, &f.page)
	addFooterFlags(fs, &f.footer)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	if f.print {
		f.kind = "print"
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, w io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := newFlagSet("watch", printWatchUsage, w)

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: next to input)")
	fs.StringVarP(&f.kind, "kind", "k", "html", "output kind: html, txt, pdf")
	fs.StringVar(&f.debounce, "debounce", "", "quiet period before rebuilding (default: 500ms)")
	fs.StringVar(&f.timeout, "timeout", "", "PDF export timeout")
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addAssetFlags(fs, &f.assets)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", printServeUsage, w)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default: 127.0.0.1:8088)")
	fs.StringVar(&f.draft, "draft", "", "draft file")
	fs.StringVar(&f.autosave, "autosave", "", "autosave interval, 0 disables (default: 10s)")
	fs.BoolVar(&f.open, "open", false, "open the preview in a browser")
	fs.StringVar(&f.timeout, "timeout", "", "export timeout")
	addCommonFlags(fs, &f.common)
	addAssetFlags(fs, &f.assets)

	if err := parseArgs(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}
