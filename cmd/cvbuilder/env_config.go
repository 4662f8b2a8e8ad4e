package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-cvbuilder/internal/config"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // CVBUILDER_CONFIG: config file name or path
	Timeout    time.Duration // CVBUILDER_TIMEOUT: export timeout
	Template   string        // CVBUILDER_TEMPLATE: default template key
	Format     string        // CVBUILDER_FORMAT: default content format
	OutputDir  string        // CVBUILDER_OUTPUT_DIR: default output directory
	AssetPath  string        // CVBUILDER_ASSET_PATH: custom template directory
	Draft      string        // CVBUILDER_DRAFT: draft file path
	Addr       string        // CVBUILDER_ADDR: preview server address
}

// knownEnvVars lists valid CVBUILDER_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"CVBUILDER_CONFIG":     true,
	"CVBUILDER_TIMEOUT":    true,
	"CVBUILDER_TEMPLATE":   true,
	"CVBUILDER_FORMAT":     true,
	"CVBUILDER_OUTPUT_DIR": true,
	"CVBUILDER_ASSET_PATH": true,
	"CVBUILDER_DRAFT":      true,
	"CVBUILDER_ADDR":       true,
	"CVBUILDER_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or non-positive CVBUILDER_TIMEOUT is ignored.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		ConfigPath: env.Getenv("CVBUILDER_CONFIG"),
		Template:   env.Getenv("CVBUILDER_TEMPLATE"),
		Format:     env.Getenv("CVBUILDER_FORMAT"),
		OutputDir:  env.Getenv("CVBUILDER_OUTPUT_DIR"),
		AssetPath:  env.Getenv("CVBUILDER_ASSET_PATH"),
		Draft:      env.Getenv("CVBUILDER_DRAFT"),
		Addr:       env.Getenv("CVBUILDER_ADDR"),
	}
	if timeout := env.Getenv("CVBUILDER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized CVBUILDER_*
// variable, catching typos like CVBUILDER_TEMPLTE.
func warnUnknownEnvVars(env *Environment) {
	if env.Environ == nil {
		return
	}
	for _, kv := range env.Environ() {
		if !strings.HasPrefix(kv, "CVBUILDER_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(env.Stderr, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills config values that are still empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via the merge functions).
func applyEnvConfig(e *envConfig, cfg *config.Config) {
	if e.Template != "" && cfg.Template == "" {
		cfg.Template = e.Template
	}
	if e.Format != "" && cfg.Format == "" {
		cfg.Format = e.Format
	}
	if e.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = e.OutputDir
	}
	if e.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = e.AssetPath
	}
	if e.Draft != "" && cfg.Draft.Path == "" {
		cfg.Draft.Path = e.Draft
	}
	if e.Addr != "" && cfg.Serve.Addr == "" {
		cfg.Serve.Addr = e.Addr
	}
}
