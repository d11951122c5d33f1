package utils

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// CleanupTempFilesByPattern removes entries of dir that match one of patterns
// and were last modified more than maxAge ago. A zero maxAge removes every
// match. It returns the number of entries removed.
func CleanupTempFilesByPattern(ctx context.Context, dir string, patterns []string, maxAge time.Duration) int {
	if dir == "" {
		dir = os.TempDir()
	}
	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for _, pattern := range patterns {
		if ctx.Err() != nil {
			logger.Warn("Temp cleanup cancelled", "cleaned", cleaned)
			return cleaned
		}

		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			logger.Warn("Bad temp file pattern", "pattern", pattern, "error", err)
			continue
		}

		for _, path := range matches {
			if ctx.Err() != nil {
				logger.Warn("Temp cleanup cancelled", "cleaned", cleaned)
				return cleaned
			}
			info, err := os.Lstat(path)
			if err != nil {
				continue
			}
			if maxAge > 0 && info.ModTime().After(cutoff) {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				logger.Warn("Failed to remove temp file", "path", path, "error", err)
				continue
			}
			cleaned++
			logger.Debug("Removed temp file", "path", filepath.Base(path))
		}
	}

	if cleaned > 0 {
		logger.Info("Temp cleanup completed", "cleaned", cleaned)
	}
	return cleaned
}
