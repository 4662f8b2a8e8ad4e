package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/server"
	"github.com/alnah/go-cvbuilder/internal/state"
)

// runServe serves the live preview of the draft until interrupted. The
// draft is autosaved while serving and saved once more on shutdown.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig(env)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeAssetFlags(flags.assets, cfg)
	if flags.addr != "" {
		cfg.Serve.Addr = flags.addr
	}
	if flags.autosave != "" {
		cfg.Serve.Autosave = flags.autosave
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, envCfg, cfg)
	if err != nil {
		return err
	}

	draftPath, err := resolveDraftPath(flags.draft, cfg)
	if err != nil {
		return err
	}
	session, err := loadSession(draftPath, cfg)
	if err != nil {
		return err
	}
	store := state.NewStore(session)

	logger := newLogger(env.Stderr, flags.common)
	opts, err := builderOptions(cfg, flags.assets.css, timeout, logger, env)
	if err != nil {
		return err
	}
	b, err := cvbuilder.NewBuilder(opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	srv, err := server.New(server.Config{Addr: cfg.Serve.Addr, Logger: logger}, b, store)
	if err != nil {
		return err
	}

	// The save context outlives ctx so edits made while the server drains
	// are still written.
	saveCtx, stopSaving := context.WithCancel(context.Background())
	saved := make(chan error, 1)
	if interval := cfg.AutosaveInterval(state.DefaultAutosaveInterval); interval > 0 {
		go func() { saved <- state.Autosave(saveCtx, store, draftPath, interval, logger) }()
	} else {
		go func() {
			<-saveCtx.Done()
			saved <- saveSession(store, draftPath)
		}()
	}

	url := "http://" + srv.Addr()
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Serving preview at %s\n", url)
		fmt.Fprintf(env.Stderr, "Draft: %s\n", draftPath)
	}
	if flags.open {
		go func() {
			if err := (&cvbuilder.BrowserOpener{}).Open(ctx, url); err != nil {
				fmt.Fprintf(env.Stderr, "warning: could not open browser: %v\n", err)
			}
		}()
	}

	serveErr := srv.ListenAndServe(ctx)
	stopSaving()
	saveErr := <-saved
	if saveErr != nil {
		saveErr = fmt.Errorf("saving draft: %w", saveErr)
	}
	return errors.Join(serveErr, saveErr)
}

// saveSession writes the store's session when it has unsaved changes.
func saveSession(store *state.Store, path string) error {
	if !store.Dirty() {
		return nil
	}
	snap := store.Snapshot()
	if err := state.SaveDraft(path, snap); err != nil {
		return err
	}
	store.MarkSaved(snap.Revision)
	return nil
}
