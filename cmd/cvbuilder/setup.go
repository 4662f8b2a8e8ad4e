package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/config"
	"github.com/alnah/go-cvbuilder/internal/fileutil"
	"github.com/alnah/go-cvbuilder/internal/format"
	"github.com/alnah/go-cvbuilder/internal/hints"
	"github.com/alnah/go-cvbuilder/internal/state"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrNoInput       = errors.New("no input specified")
	ErrReadDocument  = errors.New("failed to read document")
	ErrParseDocument = errors.New("failed to parse document")
	ErrReadCSS       = errors.New("failed to read CSS file")
	ErrWriteOutput   = errors.New("failed to write output")
)

// filePermissions is rw-r--r--: exports are meant to be shared.
const filePermissions = 0o644

// defaultExportTimeout matches the library default and bounds PDF engines
// built from names.
const defaultExportTimeout = 30 * time.Second

// loadConfig resolves the config file (--config, then CVBUILDER_CONFIG)
// and fills empty values from the environment.
func loadConfig(flagName string, e *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = e.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(e, cfg)
	return cfg, nil
}

// resolveTimeout picks the export timeout.
// Priority: --timeout flag > CVBUILDER_TIMEOUT > config > default.
func resolveTimeout(flagValue string, e *envConfig, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --timeout %q: %v", ErrUsage, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, flagValue)
		}
		return d, nil
	}
	if e.Timeout > 0 {
		return e.Timeout, nil
	}
	if timeout, _, _ := cfg.Durations(); timeout > 0 {
		return timeout, nil
	}
	return defaultExportTimeout, nil
}

// mergeAssetFlags applies asset flags to cfg (CLI wins).
func mergeAssetFlags(f assetFlags, cfg *config.Config) {
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.engine != "" {
		cfg.Engine = f.engine
	}
}

// mergePageFlags applies page flags to cfg (CLI wins).
func mergePageFlags(f pageFlags, cfg *config.Config) {
	if f.size != "" {
		cfg.Page.Size = f.size
	}
	if f.orientation != "" {
		cfg.Page.Orientation = f.orientation
	}
	if f.margin != marginUnset {
		cfg.Page.Margin = f.margin
	}
}

// mergeFooterFlags applies footer flags to cfg. Any footer value enables
// the footer; --no-footer always wins.
func mergeFooterFlags(f footerFlags, cfg *config.Config) {
	if f.updated != "" {
		cfg.Footer.Updated = f.updated
		cfg.Footer.Enabled = true
	}
	if f.text != "" {
		cfg.Footer.Text = f.text
		cfg.Footer.Enabled = true
	}
	if f.pageNumber {
		cfg.Footer.ShowPageNumber = true
		cfg.Footer.Enabled = true
	}
	if f.enabled {
		cfg.Footer.Enabled = true
	}
	if f.disabled {
		cfg.Footer.Enabled = false
	}
}

// buildPageSettings returns nil when cfg leaves the page at its defaults.
// A zero margin means the default margin.
func buildPageSettings(cfg *config.Config) *cvbuilder.PageSettings {
	p := cfg.Page
	if p.Size == "" && p.Orientation == "" && p.Margin == 0 {
		return nil
	}
	page := cvbuilder.DefaultPageSettings()
	if p.Size != "" {
		page.Size = p.Size
	}
	if p.Orientation != "" {
		page.Orientation = p.Orientation
	}
	if p.Margin != 0 {
		page.Margin = p.Margin
	}
	return page
}

// buildFooter returns nil when the footer is disabled.
func buildFooter(cfg *config.Config) *cvbuilder.Footer {
	if !cfg.Footer.Enabled {
		return nil
	}
	return &cvbuilder.Footer{
		Updated:        cfg.Footer.Updated,
		Text:           cfg.Footer.Text,
		ShowPageNumber: cfg.Footer.ShowPageNumber,
	}
}

// builderOptions turns the merged config into Builder options, followed by
// extra. The environment's options come last so they override everything.
func builderOptions(cfg *config.Config, cssPath string, timeout time.Duration, logger *slog.Logger, env *Environment, extra ...cvbuilder.Option) ([]cvbuilder.Option, error) {
	opts := []cvbuilder.Option{
		cvbuilder.WithLogger(logger),
		cvbuilder.WithTimeout(timeout),
		cvbuilder.WithVerify(cfg.Export.Verify),
	}

	_, settle, load := cfg.Durations()
	if cfg.Export.SettleDelay != "" {
		opts = append(opts, cvbuilder.WithSettleDelay(settle))
	}
	if load > 0 {
		opts = append(opts, cvbuilder.WithLoadTimeout(load))
	}

	if cfg.Engine != "" {
		engine, err := format.ParseEngine(cfg.Engine)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cvbuilder.WithMarkdownEngine(engine))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, cvbuilder.WithAssetPath(cfg.Assets.BasePath))
	}
	if page := buildPageSettings(cfg); page != nil {
		opts = append(opts, cvbuilder.WithPageSettings(page))
	}
	if footer := buildFooter(cfg); footer != nil {
		opts = append(opts, cvbuilder.WithFooter(footer))
	}

	if cssPath != "" {
		data, err := os.ReadFile(cssPath) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadCSS, err)
		}
		opts = append(opts, cvbuilder.WithCSS(string(data)))
	}

	if len(cfg.Export.Engines) > 0 {
		rs, err := cvbuilder.RasterizersByName(cfg.Export.Engines, timeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cvbuilder.WithRasterizers(rs...))
	}

	opts = append(opts, extra...)
	return append(opts, env.BuilderOptions...), nil
}

// resolveDraftPath picks the draft file.
// Priority: --draft flag > CVBUILDER_DRAFT / config > user config dir.
func resolveDraftPath(flagPath string, cfg *config.Config) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if cfg.Draft.Path != "" {
		return cfg.Draft.Path, nil
	}
	return state.DefaultDraftPath()
}

// initialState is the session used when no draft exists yet, seeded with
// the configured defaults.
func initialState(cfg *config.Config) state.State {
	s := state.Initial()
	if cfg.Template != "" {
		s.Doc.Template = cfg.Template
	}
	if cfg.Format != "" {
		s.Doc.Format = cfg.Format
	}
	s.UI.ShowPhoto = cfg.ShowPhoto()
	s.UI.Compact = cfg.UI.Compact
	return s
}

// loadSession reads the draft at path. A missing draft is not an error.
func loadSession(path string, cfg *config.Config) (state.State, error) {
	s, err := state.LoadDraft(path)
	if errors.Is(err, fs.ErrNotExist) {
		return initialState(cfg), nil
	}
	if err != nil {
		return state.State{}, err
	}
	return s, nil
}

// writeOutput writes an export next to its final name and renames it into
// place.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
