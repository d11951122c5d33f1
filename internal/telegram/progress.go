package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/gotd/td/telegram/uploader"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
	"github.com/pavelc4/aether-media-bot/pkg/utils"
)

// uploadProgress logs upload progress at most once per period.
type uploadProgress struct {
	userID   int64
	period   time.Duration
	mu       sync.Mutex
	lastTime time.Time
}

func newUploadProgress(userID int64) *uploadProgress {
	return &uploadProgress{userID: userID, period: 5 * time.Second}
}

func (p *uploadProgress) Chunk(_ context.Context, state uploader.ProgressState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	done := state.Total > 0 && state.Uploaded >= state.Total
	if !done && now.Sub(p.lastTime) < p.period {
		return nil
	}
	p.lastTime = now

	percent := float64(0)
	if state.Total > 0 {
		percent = float64(state.Uploaded) / float64(state.Total) * 100
	}
	logger.Debug("Upload progress",
		"user", p.userID,
		"file", state.Name,
		"percent", percent,
		"uploaded", utils.FormatFileSize(state.Uploaded),
		"total", utils.FormatFileSize(state.Total),
	)
	return nil
}
