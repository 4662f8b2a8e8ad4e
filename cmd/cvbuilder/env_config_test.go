package main

// Notes:
// - loadEnvConfig reads through Environment.Getenv, so no test touches the
//   process environment and all run in parallel.

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-cvbuilder/internal/config"
)

func envWith(vars map[string]string) *Environment {
	return &Environment{
		Stderr: &bytes.Buffer{},
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			kv := make([]string, 0, len(vars))
			for k, v := range vars {
				kv = append(kv, k+"="+v)
			}
			return kv
		},
	}
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("all variables", func(t *testing.T) {
		t.Parallel()

		e := loadEnvConfig(envWith(map[string]string{
			"CVBUILDER_CONFIG":     "work",
			"CVBUILDER_TIMEOUT":    "1m",
			"CVBUILDER_TEMPLATE":   "sidebar",
			"CVBUILDER_FORMAT":     "text",
			"CVBUILDER_OUTPUT_DIR": "/tmp/out",
			"CVBUILDER_ASSET_PATH": "/tmp/assets",
			"CVBUILDER_DRAFT":      "/tmp/draft.json",
			"CVBUILDER_ADDR":       "127.0.0.1:9000",
		}))

		want := envConfig{
			ConfigPath: "work",
			Timeout:    time.Minute,
			Template:   "sidebar",
			Format:     "text",
			OutputDir:  "/tmp/out",
			AssetPath:  "/tmp/assets",
			Draft:      "/tmp/draft.json",
			Addr:       "127.0.0.1:9000",
		}
		if *e != want {
			t.Errorf("loadEnvConfig() = %+v, want %+v", *e, want)
		}
	})

	t.Run("invalid timeouts are ignored", func(t *testing.T) {
		t.Parallel()

		for _, v := range []string{"soon", "-5s", "0s"} {
			e := loadEnvConfig(envWith(map[string]string{"CVBUILDER_TIMEOUT": v}))
			if e.Timeout != 0 {
				t.Errorf("CVBUILDER_TIMEOUT=%q: Timeout = %v, want 0", v, e.Timeout)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Config file values win over the environment
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	e := &envConfig{
		Template:  "sidebar",
		Format:    "text",
		OutputDir: "/env/out",
		AssetPath: "/env/assets",
		Draft:     "/env/draft.json",
		Addr:      "127.0.0.1:9000",
	}

	t.Run("fills empty values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(e, cfg)

		if cfg.Template != "sidebar" || cfg.Format != "text" {
			t.Errorf("template/format = %q/%q, want sidebar/text", cfg.Template, cfg.Format)
		}
		if cfg.Output.DefaultDir != "/env/out" {
			t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
		}
		if cfg.Assets.BasePath != "/env/assets" {
			t.Errorf("Assets.BasePath = %q", cfg.Assets.BasePath)
		}
		if cfg.Draft.Path != "/env/draft.json" {
			t.Errorf("Draft.Path = %q", cfg.Draft.Path)
		}
		if cfg.Serve.Addr != "127.0.0.1:9000" {
			t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
		}
	})

	t.Run("keeps config values", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Template: "minimal", Serve: config.ServeConfig{Addr: ":8080"}}
		applyEnvConfig(e, cfg)

		if cfg.Template != "minimal" {
			t.Errorf("Template = %q, want config value minimal", cfg.Template)
		}
		if cfg.Serve.Addr != ":8080" {
			t.Errorf("Serve.Addr = %q, want config value :8080", cfg.Serve.Addr)
		}
		if cfg.Format != "text" {
			t.Errorf("Format = %q, want env value text", cfg.Format)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vars     map[string]string
		wantWarn string
	}{
		{"known only", map[string]string{"CVBUILDER_TEMPLATE": "modern", "PATH": "/bin"}, ""},
		{"typo", map[string]string{"CVBUILDER_TIMOUT": "1m"}, "CVBUILDER_TIMOUT"},
		{"other prefix ignored", map[string]string{"OTHERTOOL_CONFIG": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := envWith(tt.vars)
			warnUnknownEnvVars(env)
			got := env.Stderr.(*bytes.Buffer).String()

			if tt.wantWarn == "" {
				if got != "" {
					t.Errorf("unexpected warning: %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantWarn) {
				t.Errorf("warning = %q, want it to name %s", got, tt.wantWarn)
			}
		})
	}

	t.Run("nil Environ", func(t *testing.T) {
		t.Parallel()

		env := &Environment{Stderr: &bytes.Buffer{}}
		warnUnknownEnvVars(env)
	})
}
