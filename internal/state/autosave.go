package state

import (
	"context"
	"log/slog"
	"time"
)

// DefaultAutosaveInterval is how often a changed session is written.
const DefaultAutosaveInterval = 10 * time.Second

// Autosave writes the store's session to path every interval while it has
// unsaved changes, and once more when ctx is done. A failed write is logged
// and retried on the next tick. Autosave returns the error of the final
// write, if any.
func Autosave(ctx context.Context, store *Store, path string, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return saveIfDirty(store, path, logger)
		case <-ticker.C:
			if err := saveIfDirty(store, path, logger); err != nil {
				logger.Warn("autosave failed", "path", path, "error", err)
			}
		}
	}
}

func saveIfDirty(store *Store, path string, logger *slog.Logger) error {
	if !store.Dirty() {
		return nil
	}
	snap := store.Snapshot()
	if err := SaveDraft(path, snap); err != nil {
		return err
	}
	store.MarkSaved(snap.Revision)
	logger.Debug("draft saved", "path", path, "revision", snap.Revision)
	return nil
}
