package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/provider"
	"github.com/pavelc4/aether-media-bot/internal/session"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// splitURLs returns the non-empty comma separated tokens of text.
func splitURLs(text string) []string {
	var urls []string
	for _, tok := range strings.Split(text, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			urls = append(urls, tok)
		}
	}
	return urls
}

func (e *Engine) onCollectingURLs(ctx context.Context, _ *session.Session, ev Event) error {
	urls := splitURLs(ev.Text)
	if len(urls) == 0 {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgSendURLs, Menu: cancelMenu()})
		return nil
	}

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.Enqueue(urls) }); err != nil {
		return err
	}
	e.record(ctx, ev, "batch", strings.Join(urls, ","))
	return e.drainQueue(ctx, ev.UserID, len(urls))
}

// drainQueue pops and processes queued URLs in order until none remain.
// A failed item is reported and skipped; it never stops the loop.
func (e *Engine) drainQueue(ctx context.Context, userID int64, total int) error {
	e.say(ctx, userID, chat.Prompt{Text: fmt.Sprintf(msgQueueStart, total), Menu: chat.Remove()})

	for n := 1; ; n++ {
		var (
			url string
			ok  bool
		)
		if _, err := e.update(ctx, userID, func(s *session.Session) { url, ok = s.PopQueue() }); err != nil {
			return err
		}
		if !ok {
			break
		}

		e.say(ctx, userID, chat.Text(fmt.Sprintf(msgQueueItem, n, total, url)))
		if err := e.processQueued(ctx, userID, url); err != nil {
			logger.Warn("Queued item failed", "user", userID, "url", url, "error", err)
			e.say(ctx, userID, chat.Text(fmt.Sprintf(msgQueueItemFail, url, describe(err))))
		}
	}

	if _, err := e.update(ctx, userID, resetSession); err != nil {
		return err
	}
	e.say(ctx, userID, chat.Prompt{Text: msgQueueDone, Menu: mainMenu()})
	return nil
}

func (e *Engine) processQueued(ctx context.Context, userID int64, raw string) error {
	url := provider.ExtractURL(raw)
	if url == "" {
		return &ClassificationMiss{URL: raw}
	}
	j, err := e.defaultJob(url, provider.Classify(url))
	if err != nil {
		return err
	}
	return e.transfer(ctx, userID, j)
}
