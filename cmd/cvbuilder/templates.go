package main

import (
	"encoding/json"
	"fmt"

	"github.com/alnah/go-cvbuilder"
)

// templateInfo is one entry of "templates --json".
type templateInfo struct {
	Key     string `json:"key"`
	Default bool   `json:"default"`
}

// runTemplates lists the embedded templates and those under --asset-path.
func runTemplates(args []string, env *Environment) error {
	var (
		common    commonFlags
		assetPath string
		asJSON    bool
	)
	fs := newFlagSet("templates", printTemplatesUsage, env.Stderr)
	addCommonFlags(fs, &common)
	fs.StringVar(&assetPath, "asset-path", "", "directory of custom templates")
	fs.BoolVar(&asJSON, "json", false, "output as JSON")
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.config, loadEnvConfig(env))
	if err != nil {
		return err
	}
	if assetPath != "" {
		cfg.Assets.BasePath = assetPath
	}

	loader, err := cvbuilder.NewAssetLoader(cfg.Assets.BasePath)
	if err != nil {
		return fmt.Errorf("%w: %v", cvbuilder.ErrInvalidAssetPath, err)
	}
	keys, err := loader.ListTemplates()
	if err != nil {
		return err
	}

	if asJSON {
		list := make([]templateInfo, len(keys))
		for i, k := range keys {
			list[i] = templateInfo{Key: k, Default: k == cvbuilder.DefaultTemplate}
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	for _, k := range keys {
		if k == cvbuilder.DefaultTemplate {
			fmt.Fprintf(env.Stdout, "%s (default)\n", k)
			continue
		}
		fmt.Fprintln(env.Stdout, k)
	}
	return nil
}
