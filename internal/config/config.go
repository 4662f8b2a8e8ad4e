// Package config loads the optional cvbuilder YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
	"github.com/alnah/go-cvbuilder/internal/yamlutil"
)

var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DirName is the per-user directory holding named configs and the draft.
const DirName = "go-cvbuilder"

// Field length limits.
const (
	MaxKeyLength      = 64   // template, format and engine names
	MaxPathLength     = 4096 // directories
	MaxTextLength     = 200  // footer text
	MaxDateLength     = 50   // "auto:[Updated] MMMM YYYY"
	MaxDurationLength = 20   // "1m30s"
	MaxAddrLength     = 255  // host:port
)

// Engines are the PDF engine names accepted in export.engines.
var Engines = []string{"rod", "rod-managed", "chromedp"}

// Config holds every setting that can come from a config file.
type Config struct {
	Template string       `yaml:"template"` // template key (default: classic)
	Format   string       `yaml:"format"`   // html, markdown, text (default: markdown)
	Engine   string       `yaml:"engine"`   // markdown engine: line, gfm (default: line)
	Assets   AssetsConfig `yaml:"assets"`
	Output   OutputConfig `yaml:"output"`
	Page     PageConfig   `yaml:"page"`
	Footer   FooterConfig `yaml:"footer"`
	Export   ExportConfig `yaml:"export"`
	UI       UIConfig     `yaml:"ui"`
	Serve    ServeConfig  `yaml:"serve"`
	Draft    DraftConfig  `yaml:"draft"`
}

// AssetsConfig points at a directory of custom templates and styles.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded only
}

// OutputConfig defines where exports are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // a4, letter, legal (default: a4)
	Orientation string  `yaml:"orientation"` // portrait, landscape
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// FooterConfig controls the PDF footer.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Updated        string `yaml:"updated"` // literal or "auto[:FORMAT]"
	Text           string `yaml:"text"`
	ShowPageNumber bool   `yaml:"showPageNumber"`
}

// ExportConfig tunes the PDF engines.
type ExportConfig struct {
	Timeout     string   `yaml:"timeout"`     // whole export (default: 30s)
	SettleDelay string   `yaml:"settleDelay"` // wait before snapshot (default: 500ms)
	LoadTimeout string   `yaml:"loadTimeout"` // per-engine load (default: 5s)
	Engines     []string `yaml:"engines"`     // ordered subset of Engines
	Verify      bool     `yaml:"verify"`      // re-read produced PDFs
}

// UIConfig mirrors the preview toggles.
type UIConfig struct {
	ShowPhoto *bool `yaml:"showPhoto"` // nil = true
	Compact   bool  `yaml:"compact"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr     string `yaml:"addr"`     // default 127.0.0.1:8088
	Autosave string `yaml:"autosave"` // default 10s, "0" disables
}

// DraftConfig overrides the draft file location.
type DraftConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration used when no file is given.
// Zero values mean "use the library default".
func DefaultConfig() *Config {
	return &Config{}
}

// ShowPhoto reports the effective photo toggle.
func (c *Config) ShowPhoto() bool {
	return c.UI.ShowPhoto == nil || *c.UI.ShowPhoto
}

// Durations returns the parsed export durations. Empty fields yield zero.
// Validate must have succeeded.
func (c *Config) Durations() (timeout, settle, load time.Duration) {
	timeout, _ = parseDuration(c.Export.Timeout)
	settle, _ = parseDuration(c.Export.SettleDelay)
	load, _ = parseDuration(c.Export.LoadTimeout)
	return timeout, settle, load
}

// AutosaveInterval returns serve.autosave, or fallback when unset.
func (c *Config) AutosaveInterval(fallback time.Duration) time.Duration {
	if c.Serve.Autosave == "" {
		return fallback
	}
	d, _ := parseDuration(c.Serve.Autosave)
	return d
}

// Validate checks lengths and enumerated values. LoadConfig calls it; it is
// exported for callers that build a Config by hand.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		limit int
	}{
		{"template", c.Template, MaxKeyLength},
		{"format", c.Format, MaxKeyLength},
		{"engine", c.Engine, MaxKeyLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"page.size", c.Page.Size, MaxKeyLength},
		{"page.orientation", c.Page.Orientation, MaxKeyLength},
		{"footer.updated", c.Footer.Updated, MaxDateLength},
		{"footer.text", c.Footer.Text, MaxTextLength},
		{"export.timeout", c.Export.Timeout, MaxDurationLength},
		{"export.settleDelay", c.Export.SettleDelay, MaxDurationLength},
		{"export.loadTimeout", c.Export.LoadTimeout, MaxDurationLength},
		{"serve.addr", c.Serve.Addr, MaxAddrLength},
		{"serve.autosave", c.Serve.Autosave, MaxDurationLength},
		{"draft.path", c.Draft.Path, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.limit); err != nil {
			return err
		}
	}

	durations := map[string]string{
		"export.timeout":     c.Export.Timeout,
		"export.settleDelay": c.Export.SettleDelay,
		"export.loadTimeout": c.Export.LoadTimeout,
		"serve.autosave":     c.Serve.Autosave,
	}
	for field, value := range durations {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
		}
	}

	for i, e := range c.Export.Engines {
		if !slices.Contains(Engines, strings.ToLower(e)) {
			return fmt.Errorf("%w: export.engines[%d]: %q (must be one of %s)",
				ErrInvalidValue, i, e, strings.Join(Engines, ", "))
		}
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin: must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	return nil
}

func validateFieldLength(field, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, field, len(value), maxLength)
	}
	return nil
}

// parseDuration accepts "" (zero) and Go duration strings; negative values
// are rejected.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// LoadConfig reads a config by path, or by name from the working directory
// then the user config directory. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if path, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFile(path, &cfg, true); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a config name.
func SearchPaths(name string) []string {
	exts := []string{".yaml", ".yml"}
	paths := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(dir, DirName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
