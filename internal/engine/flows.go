package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/provider"
	"github.com/pavelc4/aether-media-bot/internal/session"
)

var resetSession = (*session.Session).Reset

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func (e *Engine) onIdle(ctx context.Context, s *session.Session, ev Event, cmd Command) error {
	switch cmd {
	case CmdSendLink, CmdDownloadMore:
		return e.promptURL(ctx, ev.UserID)
	case CmdSendMultiple:
		if _, err := e.update(ctx, ev.UserID, (*session.Session).CollectURLs); err != nil {
			return err
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgSendURLs, Menu: cancelMenu()})
		return nil
	case CmdSearchVideo, CmdSearchMore:
		if _, err := e.update(ctx, ev.UserID, (*session.Session).AwaitSearchQuery); err != nil {
			return err
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEnterQuery, Menu: cancelMenu()})
		return nil
	case CmdSearchMusic:
		if _, err := e.update(ctx, ev.UserID, (*session.Session).AwaitMusicQuery); err != nil {
			return err
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEnterMusicQuery, Menu: cancelMenu()})
		return nil
	case CmdContactDeveloper:
		if _, err := e.update(ctx, ev.UserID, (*session.Session).AwaitDeveloperMessage); err != nil {
			return err
		}
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgWriteDeveloper, Menu: cancelMenu()})
		return nil
	}

	if url := provider.ExtractURL(ev.Text); url != "" && provider.Classify(url) != provider.Unrecognized {
		return e.intake(ctx, ev, url)
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgChooseOption, Menu: mainMenu()})
	return nil
}

func (e *Engine) promptURL(ctx context.Context, userID int64) error {
	if _, err := e.update(ctx, userID, (*session.Session).AwaitURL); err != nil {
		return err
	}
	e.say(ctx, userID, chat.Prompt{Text: msgSendURL, Menu: cancelMenu()})
	return nil
}

func (e *Engine) onAwaitingURL(ctx context.Context, _ *session.Session, ev Event) error {
	if blank(ev.Text) {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgEmptyInput + "\n\n" + msgSendURL, Menu: cancelMenu()})
		return nil
	}
	// Only http(s) links are accepted so free text never reaches yt-dlp.
	return e.intake(ctx, ev, provider.ExtractURL(ev.Text))
}

// intake stores a classified URL and offers the actions for its category.
// Unrecognised links leave the state untouched.
func (e *Engine) intake(ctx context.Context, ev Event, url string) error {
	category := provider.Classify(url)
	if category == provider.Unrecognized {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgUnsupportedLink, Menu: cancelMenu()})
		return nil
	}

	text := msgChooseAction
	if category != provider.VkStory {
		text = e.describeLink(ctx, url)
	}

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.AwaitAction(url, category) }); err != nil {
		return err
	}
	e.record(ctx, ev, "link:"+category.String(), url)
	e.say(ctx, ev.UserID, chat.Prompt{Text: text, Menu: actionMenu(category)})
	return nil
}

// describeLink renders title and counters, with placeholders when the
// metadata lookup fails.
func (e *Engine) describeLink(ctx context.Context, url string) string {
	mctx, cancel := withTimeout(ctx, e.cfg.MetadataTimeout)
	defer cancel()

	meta, err := e.Extractor.Metadata(mctx, url)
	if err != nil {
		meta = downloader.Metadata{}
	}
	title, uploader := meta.Title, meta.Uploader
	if title == "" {
		title = placeholderTitle
	}
	if uploader == "" {
		uploader = placeholderUploader
	}
	return fmt.Sprintf(msgMetadata, title, uploader, formatCount(meta.Views), formatCount(meta.Likes))
}

var categoryCommands = map[Command]provider.Category{
	CmdDownloadVkVideo: provider.VkVideoClip,
	CmdDownloadRutube:  provider.Rutube,
	CmdDownloadTikTok:  provider.TikTok,
}

func (e *Engine) onAwaitingAction(ctx context.Context, s *session.Session, ev Event, cmd Command) error {
	switch {
	case cmd == CmdBack:
		return e.promptURL(ctx, ev.UserID)
	case cmd == CmdDownloadVideo && s.Category == provider.YouTube:
		return e.offerFormats(ctx, s, ev)
	case cmd == CmdDownloadAudio && s.Category == provider.YouTube:
		return e.runInteractive(ctx, ev, "audio", e.audioJob(s.URL))
	case cmd == CmdDownloadVkStory && s.Category == provider.VkStory:
		return e.offerStoryQualities(ctx, s, ev)
	}

	if c, ok := categoryCommands[cmd]; ok && c == s.Category {
		j, err := e.defaultJob(s.URL, s.Category)
		if err != nil {
			return err
		}
		return e.runInteractive(ctx, ev, cmd.String(), j)
	}

	e.say(ctx, ev.UserID, chat.Prompt{Text: msgUnsupportedCmd, Menu: actionMenu(s.Category)})
	return nil
}

func (e *Engine) abort(ctx context.Context, userID int64, text string) error {
	if _, err := e.update(ctx, userID, resetSession); err != nil {
		return err
	}
	e.say(ctx, userID, chat.Prompt{Text: text, Menu: mainMenu()})
	return nil
}

func (e *Engine) offerFormats(ctx context.Context, s *session.Session, ev Event) error {
	e.say(ctx, ev.UserID, chat.Text(msgFetchingFormats))

	fctx, cancel := withTimeout(ctx, e.cfg.FormatsTimeout)
	found, err := e.Extractor.ListFormats(fctx, s.URL)
	cancel()
	if err != nil {
		return e.abort(ctx, ev.UserID, describe(err))
	}
	if len(found) == 0 {
		return e.abort(ctx, ev.UserID, msgNoFormats)
	}

	formats := make([]session.Format, 0, len(found))
	for _, f := range found {
		formats = append(formats, session.Format{ID: f.ID, Resolution: f.Resolution, Ext: f.Ext})
	}
	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.AwaitVideoQuality(formats) }); err != nil {
		return err
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgChooseQuality, Menu: qualityMenu(formats)})
	return nil
}

func (e *Engine) onVideoQuality(ctx context.Context, s *session.Session, ev Event, cmd Command) error {
	if cmd == CmdBack {
		return e.backToAction(ctx, s, ev)
	}
	choice := strings.TrimSpace(ev.Text)
	for _, f := range s.Formats {
		if choice != "" && f.Label() == choice {
			return e.runInteractive(ctx, ev, "video:"+f.ID,
				e.ytdlpJob(s.URL, s.Category, downloader.Request{Selector: f.ID}, chat.MediaVideo))
		}
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgInvalidChoice, Menu: qualityMenu(s.Formats)})
	return nil
}

func (e *Engine) backToAction(ctx context.Context, s *session.Session, ev Event) error {
	if _, err := e.update(ctx, ev.UserID, (*session.Session).BackToAction); err != nil {
		return err
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgChooseAction, Menu: actionMenu(s.Category)})
	return nil
}

func (e *Engine) offerStoryQualities(ctx context.Context, s *session.Session, ev Event) error {
	e.say(ctx, ev.UserID, chat.Text(msgFetchingFormats))

	qctx, cancel := withTimeout(ctx, e.cfg.FormatsTimeout)
	qualities, err := e.Stories.Qualities(qctx, s.URL)
	cancel()
	if err != nil {
		return e.abort(ctx, ev.UserID, describe(err))
	}
	preferred, _, ok := downloader.PreferredQuality(qualities)
	if !ok {
		return e.abort(ctx, ev.UserID, msgNoStoryQualities)
	}

	if _, err := e.update(ctx, ev.UserID, func(s *session.Session) { s.AwaitStoryQuality(qualities) }); err != nil {
		return err
	}
	e.say(ctx, ev.UserID, chat.Prompt{Text: fmt.Sprintf(msgChooseStory, preferred), Menu: storyMenu(qualities)})
	return nil
}

func (e *Engine) onStoryQuality(ctx context.Context, s *session.Session, ev Event, cmd Command) error {
	if cmd == CmdBack {
		return e.backToAction(ctx, s, ev)
	}
	label := strings.TrimSpace(ev.Text)
	locator, ok := s.Qualities[label]
	if label == "" || !ok {
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgInvalidChoice, Menu: storyMenu(s.Qualities)})
		return nil
	}

	j := job{
		url:      s.URL,
		category: provider.VkStory,
		kind:     chat.MediaVideo,
		fetch: func(ctx context.Context) (*downloader.Result, error) {
			return e.Stories.FetchStory(ctx, locator)
		},
		key: reuseKey("story", label, s.URL),
	}
	return e.runInteractive(ctx, ev, "story:"+label, j)
}
