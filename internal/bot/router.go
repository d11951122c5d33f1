package bot

import (
	"context"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/internal/handler"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// Dispatch queues an event for the conversation engine.
type Dispatch func(engine.Event) bool

type Limiter interface {
	Allow(userID int64) bool
}

// Peers learns user access hashes from updates.
type Peers interface {
	Learn(e tg.Entities)
}

type Router struct {
	dispatch    Dispatch
	limiter     Limiter
	peers       Peers
	admin       *handler.AdminHandler
	basic       *handler.BasicHandler
	onThrottled func()
}

func NewRouter(dispatch Dispatch, limiter Limiter, peers Peers, adm *handler.AdminHandler, basic *handler.BasicHandler, onThrottled func()) *Router {
	if onThrottled == nil {
		onThrottled = func() {}
	}
	return &Router{
		dispatch:    dispatch,
		limiter:     limiter,
		peers:       peers,
		admin:       adm,
		basic:       basic,
		onThrottled: onThrottled,
	}
}

// Register attaches the router to the update dispatcher.
func (r *Router) Register(d tg.UpdateDispatcher) {
	d.OnNewMessage(r.OnMessage)
	d.OnBotCallbackQuery(r.OnCallback)
}

// commandWord returns the lowercased leading /command of text without any
// @botname suffix, or "".
func commandWord(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word := strings.ToLower(strings.Fields(text)[0])
	if idx := strings.Index(word, "@"); idx != -1 {
		word = word[:idx]
	}
	return word
}

func (r *Router) allow(userID int64) bool {
	if r.limiter == nil || r.limiter.Allow(userID) {
		return true
	}
	r.onThrottled()
	logger.Debug("Rate limited", "user", userID)
	return false
}

// OnMessage handles private text messages. Groups and channels are ignored.
func (r *Router) OnMessage(ctx context.Context, e tg.Entities, update *tg.UpdateNewMessage) error {
	msg, ok := update.Message.(*tg.Message)
	if !ok || msg.Out {
		return nil
	}
	peer, ok := msg.PeerID.(*tg.PeerUser)
	if !ok {
		return nil
	}
	r.peers.Learn(e)

	userID := peer.UserID
	if !r.allow(userID) {
		return nil
	}

	switch commandWord(msg.Message) {
	case "/help":
		return r.run("help", func() error { return r.basic.HandleHelp(ctx, e, msg) })
	case "/stats":
		return r.run("stats", func() error { return r.admin.HandleStats(ctx, e, msg) })
	}

	ev := engine.Event{
		Kind:     engine.EventText,
		UserID:   userID,
		Username: username(e, userID),
		Text:     msg.Message,
	}
	if !r.dispatch(ev) {
		logger.Warn("Dropped message, dispatcher stopped", "user", userID)
	}
	return nil
}

func (r *Router) OnCallback(ctx context.Context, e tg.Entities, update *tg.UpdateBotCallbackQuery) error {
	r.peers.Learn(e)
	if !r.allow(update.UserID) {
		return nil
	}

	ev := engine.Event{
		Kind:      engine.EventCallback,
		UserID:    update.UserID,
		Username:  username(e, update.UserID),
		Data:      string(update.Data),
		QueryID:   update.QueryID,
		MessageID: update.MsgID,
	}
	if !r.dispatch(ev) {
		logger.Warn("Dropped callback, dispatcher stopped", "user", update.UserID)
	}
	return nil
}

func (r *Router) run(name string, f func() error) error {
	if err := f(); err != nil {
		logger.Error("Command failed", "command", name, "error", err)
	}
	return nil
}

func username(e tg.Entities, userID int64) string {
	if u, ok := e.Users[userID]; ok {
		return u.Username
	}
	return ""
}
