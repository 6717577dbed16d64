package tasks

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// newAudioSweepTask creates the task that removes stale audio artifacts.
// Audio files are normally deleted right after delivery; anything still
// in the audio directory past the retention window is leftover from a
// crash or delivery failure.
func newAudioSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "audio_sweep")
	audioDir := deps.Config.Storage.AudioDir()
	retention := deps.Config.Storage.AudioRetention

	return func(ctx context.Context) error {
		entries, err := os.ReadDir(audioDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			log.ErrorContext(ctx, "Failed to read audio directory", "dir", audioDir, "error", err)
			return err
		}

		cutoff := time.Now().Add(-retention)
		removed := 0
		for _, entry := range entries {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				log.WarnContext(ctx, "Failed to stat audio artifact, skipping", "name", entry.Name(), "error", err)
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(audioDir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.WarnContext(ctx, "Failed to remove stale audio artifact", "path", path, "error", err)
				continue
			}
			removed++
		}

		if removed > 0 {
			log.InfoContext(ctx, "Removed stale audio artifacts", "count", removed)
		}
		return nil
	}
}
