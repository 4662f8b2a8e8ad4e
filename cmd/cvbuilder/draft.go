package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
	"github.com/alnah/go-cvbuilder/internal/state"
	"github.com/alnah/go-cvbuilder/internal/yamlutil"
)

// draftFlags holds flags for the draft subcommands.
type draftFlags struct {
	common commonFlags
	draft  string
	json   bool   // show
	file   string // set
	output string // export
}

// draftCommands lists the draft subcommands in help order.
var draftCommands = []string{"show", "set", "toggle", "import", "export", "clear", "path"}

// runDraft inspects and edits the saved draft without the preview server.
func runDraft(args []string, env *Environment) error {
	if len(args) == 0 {
		printDraftUsage(env.Stderr)
		return fmt.Errorf("%w: missing draft subcommand", ErrUsage)
	}
	sub, rest := args[0], args[1:]
	if sub == "-h" || sub == "--help" {
		printDraftUsage(env.Stdout)
		return nil
	}
	if !slices.Contains(draftCommands, sub) {
		return fmt.Errorf("%w: unknown draft subcommand %q (must be one of %s)",
			ErrUsage, sub, strings.Join(draftCommands, ", "))
	}

	f := &draftFlags{}
	fs := newFlagSet("draft "+sub, printDraftUsage, env.Stderr)
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.draft, "draft", "", "draft file")
	fs.BoolVar(&f.json, "json", false, "print the draft file as JSON")
	fs.StringVar(&f.file, "file", "", "read the value from a file")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	if err := parseArgs(fs, rest); err != nil {
		return err
	}
	pos := fs.Args()

	cfg, err := loadConfig(f.common.config, loadEnvConfig(env))
	if err != nil {
		return err
	}
	path, err := resolveDraftPath(f.draft, cfg)
	if err != nil {
		return err
	}

	switch sub {
	case "path":
		fmt.Fprintln(env.Stdout, path)
		return nil
	case "clear":
		if err := state.RemoveDraft(path); err != nil {
			return err
		}
		if !f.common.quiet {
			fmt.Fprintf(env.Stderr, "Removed %s\n", path)
		}
		return nil
	case "import":
		return draftImport(pos, path, cfg, f, env)
	}

	session, err := loadSession(path, cfg)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		return draftShow(env.Stdout, path, session, f.json)
	case "export":
		return draftExport(session, f, env)
	}

	// set and toggle edit the session through the reducer, then save.
	store := state.NewStore(session)
	action, err := draftAction(sub, pos, f.file, cfg, env.Stdin)
	if err != nil {
		return err
	}
	if _, err := store.Dispatch(action); err != nil {
		return err
	}
	if err := state.SaveDraft(path, store.Snapshot()); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Updated %s\n", path)
	}
	return nil
}

// draftAction builds the action for "set" and "toggle".
func draftAction(sub string, pos []string, file string, cfg *config.Config, stdin io.Reader) (state.Action, error) {
	if len(pos) == 0 {
		return nil, fmt.Errorf("%w: draft %s needs a field name", ErrUsage, sub)
	}
	name := strings.ToLower(pos[0])

	if sub == "toggle" {
		switch name {
		case "photo":
			return state.TogglePhoto{}, nil
		case "compact":
			return state.ToggleCompact{}, nil
		}
		return nil, fmt.Errorf("%w: can toggle photo or compact, not %q", ErrUsage, pos[0])
	}

	value, err := draftValue(pos[1:], file, stdin)
	if err != nil {
		return nil, err
	}

	switch name {
	case "template":
		if err := checkTemplate(value, cfg); err != nil {
			return nil, err
		}
		return state.SelectTemplate{Key: value}, nil
	case "format":
		return state.SelectFormat{Format: value}, nil
	case "photo":
		if strings.TrimSpace(value) == "" {
			return state.RemovePhoto{}, nil
		}
		photo, err := resolvePhoto(value, ".")
		if err != nil {
			return nil, err
		}
		return state.SetPhoto{Photo: photo}, nil
	}

	field, err := state.ParseField(name)
	if err != nil {
		return nil, err
	}
	return state.SetField{Field: field, Value: value}, nil
}

// draftValue returns the value of "draft set": --file, a literal argument,
// or stdin when the argument is "-".
func draftValue(rest []string, file string, stdin io.Reader) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadDocument, err)
		}
		return string(data), nil
	case len(rest) == 1 && rest[0] == "-":
		data, err := io.ReadAll(io.LimitReader(stdin, state.MaxDraftSize))
		if err != nil {
			return "", fmt.Errorf("%w: reading stdin: %v", ErrReadDocument, err)
		}
		return string(data), nil
	case len(rest) == 1:
		return rest[0], nil
	case len(rest) == 0:
		return "", fmt.Errorf("%w: missing value (pass it, \"-\" for stdin, or --file)", ErrUsage)
	}
	return "", fmt.Errorf("%w: expected one value, got %d (quote values with spaces)", ErrUsage, len(rest))
}

// checkTemplate rejects template keys neither embedded nor in the asset
// directory. An empty key selects the default.
func checkTemplate(key string, cfg *config.Config) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	loader, err := cvbuilder.NewAssetLoader(cfg.Assets.BasePath)
	if err != nil {
		return fmt.Errorf("%w: %v", cvbuilder.ErrInvalidAssetPath, err)
	}
	keys, err := loader.ListTemplates()
	if err != nil {
		return err
	}
	if !slices.Contains(keys, key) {
		return fmt.Errorf("%w: %q", cvbuilder.ErrTemplateNotFound, key)
	}
	return nil
}

// draftImport replaces the draft with a document file.
func draftImport(pos []string, path string, cfg *config.Config, f *draftFlags, env *Environment) error {
	if len(pos) != 1 {
		return fmt.Errorf("%w: draft import needs exactly one document file", ErrNoInput)
	}
	doc, err := loadDocument(pos[0])
	if err != nil {
		return err
	}

	loaded := initialState(cfg)
	if doc.Template == "" {
		doc.Template = loaded.Doc.Template
	}
	if doc.Format == "" {
		doc.Format = loaded.Doc.Format
	}
	loaded.Doc = doc
	if doc.View.HidePhoto {
		loaded.UI.ShowPhoto = false
	}
	if doc.View.Compact {
		loaded.UI.Compact = true
	}

	store := state.NewStore(state.Initial())
	if _, err := store.Dispatch(state.Load{State: loaded}); err != nil {
		return err
	}
	if err := state.SaveDraft(path, store.Snapshot()); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Imported %s into %s\n", pos[0], path)
	}
	return nil
}

// draftExport writes the draft as a YAML document that render, export and
// draft import accept.
func draftExport(s state.State, f *draftFlags, env *Environment) error {
	data, err := yamlutil.Marshal(s.Document())
	if err != nil {
		return err
	}
	if f.output == "" || f.output == "-" {
		if _, err := env.Stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := writeOutput(f.output, data); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", f.output)
	}
	return nil
}

// draftShow prints a summary of the session, or the draft file as JSON.
func draftShow(w io.Writer, path string, s state.State, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state.NewDraft(s))
	}

	fmt.Fprintf(w, "Draft: %s\n", path)
	fmt.Fprintf(w, "  template:   %s\n", s.Doc.Template)
	fmt.Fprintf(w, "  format:     %s\n", s.Doc.Format)
	fmt.Fprintf(w, "  photo:      %s\n", describePhoto(s.Doc.Photo, s.UI.ShowPhoto))
	fmt.Fprintf(w, "  compact:    %t\n", s.UI.Compact)
	fmt.Fprintln(w)
	for _, field := range state.Fields() {
		fmt.Fprintf(w, "  %-11s %s\n", string(field)+":", summarize(fieldValue(s.Doc, field)))
	}
	return nil
}

func fieldValue(doc cvbuilder.Document, f state.Field) string {
	switch f {
	case state.FieldName:
		return doc.Name
	case state.FieldTitle:
		return doc.Title
	case state.FieldContact:
		return doc.Contact
	case state.FieldContent:
		return doc.Content
	case state.FieldHighlights:
		return doc.Highlights
	}
	return ""
}

// summarize shows the first line of a value and how much follows.
func summarize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "(empty)"
	}
	first, rest, multi := strings.Cut(v, "\n")
	const maxWidth = 60
	if r := []rune(first); len(r) > maxWidth {
		first = string(r[:maxWidth]) + "..."
	}
	if multi {
		return fmt.Sprintf("%s (+%d lines)", first, strings.Count(rest, "\n")+1)
	}
	return first
}

func describePhoto(photo string, shown bool) string {
	var desc string
	switch {
	case photo == "":
		desc = "none"
	case strings.HasPrefix(photo, "data:"):
		mime, _, _ := strings.Cut(strings.TrimPrefix(photo, "data:"), ";")
		desc = "embedded " + mime
	default:
		desc = photo
	}
	if !shown {
		desc += " (hidden)"
	}
	return desc
}
