package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alnah/go-cvbuilder"
)

// runRender writes the HTML preview of a document, or of the draft.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
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

	doc, _, err := resolveDocument(positional, flags.document, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	opts, err := builderOptions(cfg, flags.assets.css, defaultExportTimeout, logger, env)
	if err != nil {
		return err
	}
	b, err := cvbuilder.NewBuilder(opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	html, err := b.Render(ctx, doc)
	if err != nil {
		return err
	}

	if flags.output == "" || flags.output == "-" {
		if _, err := io.WriteString(env.Stdout, html); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if err := writeOutput(flags.output, []byte(html)); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", flags.output)
	}
	return nil
}
