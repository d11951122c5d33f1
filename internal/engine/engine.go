// Package engine drives the per-user conversation: it classifies inbound
// text and callbacks, walks the session through its states and calls out to
// the extractor, search and transport collaborators.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/search"
	"github.com/pavelc4/aether-media-bot/internal/session"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type Extractor interface {
	ListFormats(ctx context.Context, url string) ([]downloader.Format, error)
	Metadata(ctx context.Context, url string) (downloader.Metadata, error)
	Download(ctx context.Context, req downloader.Request) (*downloader.Result, error)
}

type Stories interface {
	Qualities(ctx context.Context, url string) (map[string]string, error)
	FetchStory(ctx context.Context, locator string) (*downloader.Result, error)
}

type Tracks interface {
	FetchTrack(ctx context.Context, locator, title string) (*downloader.Result, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, kind search.Kind, limit int) ([]search.Item, error)
}

// Transport sends directives to a user. SendPrompt returns the id of the
// message it created so inline menus can be edited later.
type Transport interface {
	SendPrompt(ctx context.Context, userID int64, p chat.Prompt) (int, error)
	EditPrompt(ctx context.Context, userID int64, messageID int, p chat.Prompt) error
	AnswerCallback(ctx context.Context, queryID int64, text string, alert bool) error
	Deliver(ctx context.Context, userID int64, d chat.Delivery) error
}

// Reuser sends a file uploaded earlier under the same key, skipping the
// download. It reports false when nothing is cached for key.
type Reuser interface {
	Resend(ctx context.Context, userID int64, key string) (bool, error)
}

// Recorder persists user activity. Its failures never change the flow.
type Recorder interface {
	SaveUser(ctx context.Context, userID int64, username string) error
	LogAction(ctx context.Context, userID int64, action, url string) error
	SaveDownload(ctx context.Context, userID int64, url, title string, size int64) error
}

type Metrics interface {
	Event(state session.State, cmd Command)
	Download(category, kind, outcome string, size int64, took time.Duration)
	Search(kind, outcome string)
}

type EventKind int

const (
	EventText EventKind = iota
	EventCallback
)

type Event struct {
	Kind     EventKind
	UserID   int64
	Username string
	Text     string
	// Callback fields.
	Data      string
	QueryID   int64
	MessageID int
}

type Config struct {
	MaxUploadSize   int64
	DevID           int64
	FormatsTimeout  time.Duration
	MetadataTimeout time.Duration
	DownloadTimeout time.Duration
	SearchTimeout   time.Duration
	DeliveryTimeout time.Duration
	PromptTimeout   time.Duration
	TempDir         string
}

const (
	videoSearchLimit = 5
	musicSearchLimit = 50
	musicPageSize    = 5
)

type Deps struct {
	Sessions  session.Store
	Extractor Extractor
	Stories   Stories
	Tracks    Tracks
	Searcher  Searcher
	Transport Transport
	Recorder  Recorder
	Metrics   Metrics
	// Reuser is optional.
	Reuser Reuser
}

type Engine struct {
	cfg Config
	Deps
}

func New(cfg Config, deps Deps) *Engine {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &Engine{cfg: cfg, Deps: deps}
}

// Handle processes one inbound event. It never panics; a panic inside a
// transition is treated as a corrupted session.
func (e *Engine) Handle(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Transition panicked", "user", ev.UserID, "panic", r, "stack", string(debug.Stack()))
			err = e.corrupt(ctx, ev.UserID, fmt.Errorf("%w: panic: %v", ErrSessionCorrupt, r))
		}
	}()

	s, err := e.Sessions.Get(ctx, ev.UserID)
	if err != nil {
		logger.Error("Session lookup failed", "user", ev.UserID, "error", err)
		e.say(ctx, ev.UserID, chat.Prompt{Text: msgStoreUnavailable})
		return err
	}
	if verr := s.Validate(); verr != nil {
		return e.corrupt(ctx, ev.UserID, fmt.Errorf("%w: %v", ErrSessionCorrupt, verr))
	}

	if ev.Kind == EventCallback {
		e.Metrics.Event(s.State, CmdNone)
		return e.onCallback(ctx, s, ev)
	}

	cmd := ClassifyCommand(ev.Text)
	e.Metrics.Event(s.State, cmd)
	logger.Debug("Handling event", "user", ev.UserID, "state", s.State, "cmd", cmd)

	switch cmd {
	case CmdCancel:
		return e.cancel(ctx, ev.UserID)
	case CmdStart:
		return e.start(ctx, ev)
	case CmdMenu:
		return e.menu(ctx, ev.UserID)
	}

	switch s.State {
	case session.Idle:
		return e.onIdle(ctx, s, ev, cmd)
	case session.AwaitingURL:
		return e.onAwaitingURL(ctx, s, ev)
	case session.AwaitingAction:
		return e.onAwaitingAction(ctx, s, ev, cmd)
	case session.AwaitingVideoQuality:
		return e.onVideoQuality(ctx, s, ev, cmd)
	case session.AwaitingVkStoryQuality:
		return e.onStoryQuality(ctx, s, ev, cmd)
	case session.AwaitingSearchQuery:
		return e.onSearchQuery(ctx, s, ev)
	case session.AwaitingSearchSelection:
		return e.onSearchSelection(ctx, s, ev)
	case session.AwaitingMusicQuery:
		return e.onMusicQuery(ctx, s, ev)
	case session.AwaitingMusicSelection:
		return e.onMusicSelection(ctx, s, ev)
	case session.CollectingURLs:
		return e.onCollectingURLs(ctx, s, ev)
	case session.AwaitingDeveloperMessage:
		return e.onDeveloperMessage(ctx, s, ev)
	}
	return e.corrupt(ctx, ev.UserID, fmt.Errorf("%w: unknown state %q", ErrSessionCorrupt, s.State))
}

func (e *Engine) update(ctx context.Context, userID int64, mutate func(*session.Session)) (*session.Session, error) {
	s, err := e.Sessions.Update(ctx, userID, mutate)
	if err != nil {
		logger.Error("Session update failed", "user", userID, "error", err)
	}
	return s, err
}

// say sends a prompt; delivery failures are only logged.
func (e *Engine) say(ctx context.Context, userID int64, p chat.Prompt) int {
	pctx, cancel := withTimeout(ctx, e.cfg.PromptTimeout)
	defer cancel()
	id, err := e.Transport.SendPrompt(pctx, userID, p)
	if err != nil {
		logger.Warn("Failed to send prompt", "user", userID, "error", err)
	}
	return id
}

func (e *Engine) answer(ctx context.Context, ev Event, text string, alert bool) {
	if ev.QueryID == 0 {
		return
	}
	actx, cancel := withTimeout(ctx, e.cfg.PromptTimeout)
	defer cancel()
	if err := e.Transport.AnswerCallback(actx, ev.QueryID, text, alert); err != nil {
		logger.Warn("Failed to answer callback", "user", ev.UserID, "error", err)
	}
}

func (e *Engine) record(ctx context.Context, ev Event, action, url string) {
	if err := e.Recorder.SaveUser(ctx, ev.UserID, ev.Username); err != nil {
		logger.Warn("Failed to save user", "user", ev.UserID, "error", err)
	}
	if err := e.Recorder.LogAction(ctx, ev.UserID, action, url); err != nil {
		logger.Warn("Failed to log action", "user", ev.UserID, "error", err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// corrupt resets a session that can no longer be trusted.
func (e *Engine) corrupt(ctx context.Context, userID int64, cause error) error {
	logger.Error("Resetting corrupted session", "user", userID, "error", cause)
	if _, err := e.Sessions.Clear(ctx, userID); err != nil {
		logger.Error("Failed to clear session", "user", userID, "error", err)
	}
	e.say(ctx, userID, chat.Prompt{Text: msgSessionReset, Menu: mainMenu()})
	return nil
}

func (e *Engine) cancel(ctx context.Context, userID int64) error {
	if _, err := e.Sessions.Clear(ctx, userID); err != nil {
		return err
	}
	e.say(ctx, userID, chat.Prompt{Text: msgFarewell, Menu: chat.Remove()})
	return nil
}

func (e *Engine) start(ctx context.Context, ev Event) error {
	if _, err := e.Sessions.Clear(ctx, ev.UserID); err != nil {
		return err
	}
	e.record(ctx, ev, "start", "")
	e.say(ctx, ev.UserID, chat.Prompt{Text: msgWelcome, Menu: mainMenu()})
	return nil
}

func (e *Engine) menu(ctx context.Context, userID int64) error {
	if _, err := e.Sessions.Clear(ctx, userID); err != nil {
		return err
	}
	e.say(ctx, userID, chat.Prompt{Text: msgChooseOption, Menu: mainMenu()})
	return nil
}

type nopRecorder struct{}

func (nopRecorder) SaveUser(context.Context, int64, string) error                    { return nil }
func (nopRecorder) LogAction(context.Context, int64, string, string) error           { return nil }
func (nopRecorder) SaveDownload(context.Context, int64, string, string, int64) error { return nil }

type nopMetrics struct{}

func (nopMetrics) Event(session.State, Command)                         {}
func (nopMetrics) Download(string, string, string, int64, time.Duration) {}
func (nopMetrics) Search(string, string)                                {}
