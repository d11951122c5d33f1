package telegram

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"

	"github.com/pavelc4/aether-media-bot/internal/cache"
	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// Transport delivers engine directives over MTProto.
type Transport struct {
	api           *tg.Client
	sender        *message.Sender
	peers         *Peers
	media         *cache.MediaCache
	uploadThreads int
	threads       func(ctx context.Context) int
}

var (
	_ engine.Transport = (*Transport)(nil)
	_ engine.Reuser    = (*Transport)(nil)
)

// NewTransport builds a transport. media may be nil to disable upload reuse.
func NewTransport(api *tg.Client, peers *Peers, media *cache.MediaCache) *Transport {
	return &Transport{
		api:           api,
		sender:        message.NewSender(api),
		peers:         peers,
		media:         media,
		uploadThreads: 4,
	}
}

// TuneThreads makes every upload ask f for its part concurrency.
func (t *Transport) TuneThreads(f func(ctx context.Context) int) {
	t.threads = f
}

func (t *Transport) peer(userID int64) tg.InputPeerClass {
	p, known := t.peers.Resolve(userID)
	if !known {
		logger.Debug("Addressing user without cached access hash", "user", userID)
	}
	return p
}

func (t *Transport) SendPrompt(ctx context.Context, userID int64, p chat.Prompt) (int, error) {
	rb := t.sender.To(t.peer(userID))
	var (
		updates tg.UpdatesClass
		err     error
	)
	if markup := Markup(p.Menu); markup != nil {
		updates, err = rb.Markup(markup).Text(ctx, p.Text)
	} else {
		updates, err = rb.Text(ctx, p.Text)
	}
	if err != nil {
		return 0, errors.Wrap(err, "send message")
	}
	return getMsgID(updates), nil
}

func (t *Transport) EditPrompt(ctx context.Context, userID int64, messageID int, p chat.Prompt) error {
	req := &tg.MessagesEditMessageRequest{
		Peer:    t.peer(userID),
		ID:      messageID,
		Message: p.Text,
	}
	if markup := Markup(p.Menu); markup != nil {
		req.SetReplyMarkup(markup)
	}
	if _, err := t.api.MessagesEditMessage(ctx, req); err != nil {
		return errors.Wrap(err, "edit message")
	}
	return nil
}

func (t *Transport) AnswerCallback(ctx context.Context, queryID int64, text string, alert bool) error {
	req := &tg.MessagesSetBotCallbackAnswerRequest{
		QueryID: queryID,
		Alert:   alert,
	}
	if text != "" {
		req.SetMessage(text)
	}
	if _, err := t.api.MessagesSetBotCallbackAnswer(ctx, req); err != nil {
		return errors.Wrap(err, "answer callback")
	}
	return nil
}

// Deliver uploads the artifact at d.Path and sends it as a streamable video
// or an audio track.
func (t *Transport) Deliver(ctx context.Context, userID int64, d chat.Delivery) error {
	file, err := t.upload(ctx, userID, d.Path)
	if err != nil {
		return &engine.DeliveryError{Err: err}
	}
	updates, err := t.sender.To(t.peer(userID)).Media(ctx, document(file, d))
	if err != nil {
		return &engine.DeliveryError{Err: errors.Wrap(err, "send media")}
	}
	if t.media != nil && d.Key != "" {
		if m := mediaFromUpdates(updates); m != nil {
			m.Title = d.Title
			t.media.Set(d.Key, m)
		}
	}
	return nil
}

// Resend sends the document cached under key. A rejected reference is
// forgotten so the next attempt uploads afresh.
func (t *Transport) Resend(ctx context.Context, userID int64, key string) (bool, error) {
	if t.media == nil {
		return false, nil
	}
	m, ok := t.media.Get(key)
	if !ok {
		return false, nil
	}
	_, err := t.api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
		Peer: t.peer(userID),
		Media: &tg.InputMediaDocument{
			ID: &tg.InputDocument{
				ID:            m.ID,
				AccessHash:    m.AccessHash,
				FileReference: m.FileReference,
			},
		},
		Message:  m.Title,
		RandomID: time.Now().UnixNano(),
	})
	if err != nil {
		t.media.Forget(key)
		return false, errors.Wrap(err, "resend media")
	}
	return true, nil
}
