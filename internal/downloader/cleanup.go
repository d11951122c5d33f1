package downloader

import (
	"os"
	"path/filepath"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// TempPatterns match every artifact this package writes to the temp dir.
var TempPatterns = []string{
	TempPrefix + "*",
	storyTempPrefix + "*",
	trackTempPrefix + "*",
}

// Discard deletes a downloaded artifact. A file that is already gone is fine.
func Discard(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Remove deletes every file matching pattern, used for partial yt-dlp output.
func Remove(pattern string) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove partial download", "path", m, "error", err)
		}
	}
}
