package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render a CV document (or the draft) to HTML")
	fmt.Fprintln(w, "  export     Export to PDF, print page, HTML or text")
	fmt.Fprintln(w, "  watch      Rebuild an export whenever the document changes")
	fmt.Fprintln(w, "  serve      Live preview and editing API for the draft")
	fmt.Fprintln(w, "  draft      Show or edit the saved draft")
	fmt.Fprintln(w, "  templates  List available templates")
	fmt.Fprintln(w, "  doctor     Check the system for PDF export")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cvbuilder help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show engine and timing details")
}

// printDocumentUsage prints the document override flags.
func printDocumentUsage(w io.Writer) {
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --draft <path>        Draft file used when no input is given")
	fmt.Fprintln(w, "  -t, --template <key>      classic, modern, minimal, executive, compact, sidebar")
	fmt.Fprintln(w, "  -f, --format <s>          Content format: html, markdown, text")
	fmt.Fprintln(w, "      --compact             Tighter spacing")
	fmt.Fprintln(w, "      --no-photo            Hide the photo frame")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory of custom templates")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file")
	fmt.Fprintln(w, "      --md-engine <s>       Markdown engine: line, gfm")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder render [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a CV to a standalone HTML page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    YAML or JSON document (default: the saved draft)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w)
	printDocumentUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder export [input...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a CV. When no PDF engine works, the print page is opened")
	fmt.Fprintln(w, "in the browser instead so it can be saved as PDF from there.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    YAML or JSON documents (default: the saved draft)")
	fmt.Fprintln(w, "           Several inputs are exported in parallel; -o is a directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -k, --kind <s>            pdf, print, html, txt (default: pdf)")
	fmt.Fprintln(w, "      --print               Shorthand for --kind print")
	fmt.Fprintln(w, "      --no-open             Never open a browser window")
	fmt.Fprintln(w, "      --verify              Check the PDF contains the CV text")
	fmt.Fprintln(w, "      --engine <list>       PDF engines in order: rod, rod-managed, chromedp")
	fmt.Fprintln(w, "      --timeout <d>         Export timeout (e.g., 30s, 1m)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel exports for several inputs (default: auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a4, letter, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0-2)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Footer:")
	fmt.Fprintln(w, "      --footer              Print a footer line")
	fmt.Fprintln(w, "      --no-footer           Disable the footer")
	fmt.Fprintln(w, "      --updated <s>         Date: literal, \"auto\" or \"auto:FORMAT\"")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long, month, year")
	fmt.Fprintln(w, "      --footer-text <s>     Custom footer text")
	fmt.Fprintln(w, "      --page-number         Show page numbers")
	fmt.Fprintln(w)
	printDocumentUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder watch <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rebuild an export every time the document or --css file is saved.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: next to input)")
	fmt.Fprintln(w, "  -k, --kind <s>            html, txt, pdf (default: html)")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before rebuilding (default: 500ms)")
	fmt.Fprintln(w, "      --timeout <d>         PDF export timeout")
	fmt.Fprintln(w)
	printDocumentUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a live preview of the draft with a JSON API to edit and")
	fmt.Fprintln(w, "export it. The draft is saved periodically and on exit.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: 127.0.0.1:8088)")
	fmt.Fprintln(w, "      --draft <path>        Draft file")
	fmt.Fprintln(w, "      --autosave <d>        Autosave interval, 0 = only on exit (default: 10s)")
	fmt.Fprintln(w, "      --open                Open the preview in a browser")
	fmt.Fprintln(w, "      --timeout <d>         Export timeout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory of custom templates")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file")
	fmt.Fprintln(w, "      --md-engine <s>       Markdown engine: line, gfm")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDraftUsage prints usage for the draft command.
func printDraftUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder draft <subcommand> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  show [--json]                    Summarize the draft")
	fmt.Fprintln(w, "  set <field> <value|-> [--file f] Set name, title, contact, content,")
	fmt.Fprintln(w, "                                   highlights, photo, template or format")
	fmt.Fprintln(w, "  toggle <photo|compact>           Flip a display toggle")
	fmt.Fprintln(w, "  import <file>                    Replace the draft with a document")
	fmt.Fprintln(w, "  export [-o file]                 Write the draft as a YAML document")
	fmt.Fprintln(w, "  clear                            Delete the draft")
	fmt.Fprintln(w, "  path                             Print the draft location")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --draft <path>        Draft file")
	printCommonUsage(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder templates [--asset-path dir] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List template keys. Custom templates in --asset-path are included.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cvbuilder doctor [--json] [--draft path]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the print browser and the draft file.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "draft":
		printDraftUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: cvbuilder version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: cvbuilder help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
