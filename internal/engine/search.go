package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/provider"
	"github.com/pavelc4/aether-media-bot/internal/search"
	"github.com/pavelc4/aether-media-bot/internal/session"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

func (e *Engine) runSearch(ctx context.Context, query string, kind search.Kind, limit int) ([]session.Result, error) {
	sctx, cancel := withTimeout(ctx, e.cfg.SearchTimeout)
	defer cancel()

	items, err := e.Searcher.Search(sctx, query, kind, limit)
	if err != nil {
		e.Metrics.Search(kind.String(), "error")
		logger.Warn("Search failed", "kind", kind.String(), "query", query, "error", err)
		return nil, err
	}
	if len(items) == 0 {
		e.Metrics.Search(kind.String(), "empty")
		return nil, nil
	}
	e.Metrics.Search(kind.String(), "ok")

	results := make([]session.Result, 0, len(items))
	for _, it := range items {
		results = append(results, session.Result{
			Title:    it.Title,
			Artist:   it.Artist,
			URL:      it.URL,
			Duration: it.Duration,
			Views:    it.Views,
		})
	}
	return results, nil
}

func (e *Engine) onSearchQuery(ctx context.Context, _ *session.Session, ev Event) error {
	if blank(ev.Text) {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEmptyInput + "\n\n" + msgEnterQuery, Menu: cancelMenu()})
		return nil
	}
	query := strings.TrimSpace(ev.Text)

	results, err := e.runSearch(ctx, query, search.Video, videoSearchLimit)
	if err != nil {
		return e.abort(ctx, ev.UserID, msgSearchFailed)
	}
	if len(results) == 0 {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgNothingFound, Menu: cancelMenu()})
		return nil
	}

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.AwaitSearchSelection(results) }); err != nil {
		return err
	}
	e.record(ctx, ev, "search", query)
	e.say(ctx, ev.UserID, chat.Prompt{Text: searchText(query, results), Menu: searchMenu(len(results))})
	return nil
}

// pick translates a 1-based choice into a result, bounds checked.
func pick(results []session.Result, oneBased string) (session.Result, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(oneBased))
	if err != nil || n < 1 || n > len(results) {
		return session.Result{}, false
	}
	return results[n-1], true
}

func (e *Engine) onSearchSelection(ctx context.Context, s *session.Session, ev Event) error {
	r, ok := pick(s.Results, ev.Text)
	if !ok {
		e.say(ctx, ev.UserID, chat.Text(fmt.Sprintf(msgInvalidNumber, len(s.Results))))
		return nil
	}
	return e.intake(ctx, ev, r.URL)
}

func (e *Engine) onMusicQuery(ctx context.Context, _ *session.Session, ev Event) error {
	if blank(ev.Text) {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEmptyInput + "\n\n" + msgEnterMusicQuery, Menu: cancelMenu()})
		return nil
	}
	return e.musicSearch(ctx, ev, strings.TrimSpace(ev.Text))
}

// musicSearch keeps the user in the query state on failure or no matches.
func (e *Engine) musicSearch(ctx context.Context, ev Event, query string) error {
	results, err := e.runSearch(ctx, query, search.Music, musicSearchLimit)
	if err != nil {
		if _, uerr := e.update(ctx, ev.UserID, (*session.Session).AwaitMusicQuery); uerr != nil {
			return uerr
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgSearchFailed + "\n\n" + msgEnterMusicQuery, Menu: cancelMenu()})
		return nil
	}
	if len(results) == 0 {
		if _, uerr := e.update(ctx, ev.UserID, (*session.Session).AwaitMusicQuery); uerr != nil {
			return uerr
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgNothingFound, Menu: cancelMenu()})
		return nil
	}

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.AwaitMusicSelection(results) }); err != nil {
		return err
	}
	e.record(ctx, ev, "music_search", query)
	e.say(ctx, ev.UserID, chat.Prompt{Text: musicText(query, 0, len(results)), Menu: musicMenu(results, 0)})
	return nil
}

func musicText(query string, page, n int) string {
	return fmt.Sprintf(msgMusicResults, query, page+1, pageCount(n))
}

func (e *Engine) onMusicSelection(ctx context.Context, s *session.Session, ev Event) error {
	if blank(ev.Text) {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEmptyInput + "\n\n" + msgEnterMusicQuery, Menu: cancelMenu()})
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ev.Text)); err == nil {
		if n < 1 || n > len(s.Results) {
			e.say(ctx, ev.UserID, chat.Text(fmt.Sprintf(msgInvalidNumber, len(s.Results))))
			return nil
		}
		return e.sendTrack(ctx, ev, s.Results[n-1])
	}
	return e.musicSearch(ctx, ev, strings.TrimSpace(ev.Text))
}

// sendTrack delivers one track; the user stays on the result list.
func (e *Engine) sendTrack(ctx context.Context, ev Event, r session.Result) error {
	title := strings.TrimSpace(r.Artist + " - " + r.Title)
	e.say(ctx, ev.UserID, chat.Text(msgTrackDownload))
	e.record(ctx, ev, "music_download", r.URL)

	j := job{
		url:      r.URL,
		category: provider.Unrecognized,
		kind:     chat.MediaAudio,
		fetch: func(ctx context.Context) (*downloader.Result, error) {
			return e.Tracks.FetchTrack(ctx, r.URL, title)
		},
		key: reuseKey("track", r.URL),
	}
	if err := e.transfer(ctx, ev.UserID, j); err != nil {
		e.say(ctx, ev.UserID, chat.Text(describe(err)))
	}
	return nil
}

func (e *Engine) onCallback(ctx context.Context, s *session.Session, ev Event) error {
	data := ev.Data
	switch {
	case data == cbIgnore:
		e.answer(ctx, ev, "", false)
		return nil
	case data == cbSearchCancel, data == cbMusicCancel:
		e.answer(ctx, ev, "", false)
		return e.cancel(ctx, ev.UserID)
	case strings.HasPrefix(data, cbSearchPrefix):
		if s.State != session.AwaitingSearchSelection {
			e.answer(ctx, ev, msgSessionExpired, true)
			return nil
		}
		r, ok := pick(s.Results, strings.TrimPrefix(data, cbSearchPrefix))
		if !ok {
			e.answer(ctx, ev, fmt.Sprintf(msgInvalidNumber, len(s.Results)), true)
			return nil
		}
		e.answer(ctx, ev, "", false)
		return e.intake(ctx, ev, r.URL)
	case strings.HasPrefix(data, cbMusicPagePrefix):
		if s.State != session.AwaitingMusicSelection {
			e.answer(ctx, ev, msgSessionExpired, true)
			return nil
		}
		return e.turnPage(ctx, s, ev, strings.TrimPrefix(data, cbMusicPagePrefix))
	case strings.HasPrefix(data, cbMusicDLPrefix):
		if s.State != session.AwaitingMusicSelection {
			e.answer(ctx, ev, msgSessionExpired, true)
			return nil
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(data, cbMusicDLPrefix))
		if err != nil || idx < 0 || idx >= len(s.Results) {
			e.answer(ctx, ev, msgSessionExpired, true)
			return nil
		}
		e.answer(ctx, ev, msgTrackDownload, false)
		return e.sendTrack(ctx, ev, s.Results[idx])
	}

	logger.Debug("Unknown callback", "user", ev.UserID, "data", data)
	e.answer(ctx, ev, "", false)
	return nil
}

func (e *Engine) turnPage(ctx context.Context, s *session.Session, ev Event, raw string) error {
	page, err := strconv.Atoi(raw)
	if err != nil {
		e.answer(ctx, ev, "", false)
		return nil
	}
	page = clampPage(page, len(s.Results))

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.SetPage(page) }); err != nil {
		return err
	}
	e.answer(ctx, ev, "", false)

	p := chat.Prompt{Text: fmt.Sprintf(msgMusicPage, page+1, pageCount(len(s.Results))), Menu: musicMenu(s.Results, page)}
	ectx, cancel := withTimeout(ctx, e.cfg.PromptTimeout)
	defer cancel()
	if err := e.Transport.EditPrompt(ectx, ev.UserID, ev.MessageID, p); err != nil {
		logger.Warn("Failed to edit music page", "user", ev.UserID, "error", err)
	}
	return nil
}
