package engine

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/provider"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type fetchFunc func(ctx context.Context) (*downloader.Result, error)

// job is one download-and-send unit.
type job struct {
	url      string
	category provider.Category
	kind     chat.MediaKind
	fetch    fetchFunc
	// key identifies the rendition for upload reuse; empty disables it.
	key      string
}

func reuseKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func (e *Engine) ytdlpJob(url string, c provider.Category, req downloader.Request, kind chat.MediaKind) job {
	req.URL = url
	return job{
		url:      url,
		category: c,
		kind:     kind,
		fetch: func(ctx context.Context) (*downloader.Result, error) {
			return e.Extractor.Download(ctx, req)
		},
		key: reuseKey(req.Selector, strconv.FormatBool(req.ExtractAudio), url),
	}
}

// defaultJob picks the best-effort rendition for a category, with no
// question asked. Used by direct category actions and the queue.
func (e *Engine) defaultJob(url string, c provider.Category) (job, error) {
	switch c {
	case provider.YouTube, provider.Rutube, provider.TikTok:
		return e.ytdlpJob(url, c, downloader.Request{Selector: "best"}, chat.MediaVideo), nil
	case provider.VkVideoClip:
		return e.ytdlpJob(url, c, downloader.Request{Selector: "best", Headers: downloader.VKHeaders}, chat.MediaVideo), nil
	case provider.VkStory:
		return job{
			url:      url,
			category: c,
			kind:     chat.MediaVideo,
			fetch: func(ctx context.Context) (*downloader.Result, error) {
				qualities, err := e.Stories.Qualities(ctx, url)
				if err != nil {
					return nil, err
				}
				_, locator, ok := downloader.PreferredQuality(qualities)
				if !ok {
					return nil, ErrNoRenditions
				}
				return e.Stories.FetchStory(ctx, locator)
			},
		}, nil
	}
	return job{}, &ClassificationMiss{URL: url}
}

func (e *Engine) audioJob(url string) job {
	return e.ytdlpJob(url, provider.YouTube, downloader.Request{Selector: "bestaudio/best", ExtractAudio: true}, chat.MediaAudio)
}

// transfer downloads the artifact, checks it against the upload ceiling and
// sends it. The local file is removed whatever happens.
func (e *Engine) transfer(ctx context.Context, userID int64, j job) (err error) {
	start := time.Now()
	var size int64
	defer func() {
		e.Metrics.Download(j.category.String(), j.kind.String(), outcome(err), size, time.Since(start))
	}()

	if e.resend(ctx, userID, j) {
		return nil
	}

	dctx, cancel := withTimeout(ctx, e.cfg.DownloadTimeout)
	res, err := j.fetch(dctx)
	cancel()
	if err != nil {
		logger.Warn("Download failed", "user", userID, "url", j.url, "error", err)
		return err
	}
	defer func() {
		if derr := downloader.Discard(res.Path); derr != nil {
			logger.Warn("Failed to remove artifact", "path", res.Path, "error", derr)
		}
	}()

	size = res.Size
	if size <= 0 {
		if st, serr := os.Stat(res.Path); serr == nil {
			size = st.Size()
		}
	}
	if e.cfg.MaxUploadSize > 0 && size > e.cfg.MaxUploadSize {
		logger.Info("Artifact over upload limit", "user", userID, "size", size, "limit", e.cfg.MaxUploadSize)
		return &TooLargeError{Size: size, Limit: e.cfg.MaxUploadSize}
	}

	title := res.Title
	if title == "" {
		title = j.url
	}

	sctx, scancel := withTimeout(ctx, e.cfg.DeliveryTimeout)
	defer scancel()
	if derr := e.Transport.Deliver(sctx, userID, chat.Delivery{Path: res.Path, Title: title, Kind: j.kind, Key: j.key}); derr != nil {
		var de *DeliveryError
		if !errors.As(derr, &de) {
			derr = &DeliveryError{Err: derr}
		}
		logger.Warn("Delivery failed", "user", userID, "url", j.url, "error", derr)
		return derr
	}

	if rerr := e.Recorder.SaveDownload(ctx, userID, j.url, title, size); rerr != nil {
		logger.Warn("Failed to record download", "user", userID, "error", rerr)
	}
	logger.InfoWithDuration("Delivered", start, "user", userID, "category", j.category.String(), "size", size)
	return nil
}

func (e *Engine) resend(ctx context.Context, userID int64, j job) bool {
	if j.key == "" || e.Reuser == nil {
		return false
	}
	rctx, cancel := withTimeout(ctx, e.cfg.DeliveryTimeout)
	defer cancel()
	ok, err := e.Reuser.Resend(rctx, userID, j.key)
	if err != nil {
		logger.Warn("Cached resend failed, downloading again", "user", userID, "url", j.url, "error", err)
		return false
	}
	if ok {
		logger.Info("Cache hit", "user", userID, "url", j.url)
	}
	return ok
}

// runInteractive moves the user to Idle, performs the job and reports the
// outcome with the matching follow-up menu.
func (e *Engine) runInteractive(ctx context.Context, ev Event, action string, j job) error {
	if _, err := e.update(ctx, ev.UserID, resetSession); err != nil {
		return err
	}
	e.record(ctx, ev, action, j.url)
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgDownloading, Menu: chat.Remove()})

	if err := e.transfer(ctx, ev.UserID, j); err != nil {
		e.say(ctx, ev.UserID, chat.Prompt{Text: describe(err), Menu: mainMenu()})
		return nil
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgDone, Menu: postDownloadMenu()})
	return nil
}
