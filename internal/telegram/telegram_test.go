package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/cache"
	"github.com/pavelc4/aether-media-bot/internal/chat"
)

func TestMarkupReply(t *testing.T) {
	m, ok := Markup(chat.Reply("Send link 🔗", "Cancel ❌")).(*tg.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, m.Resize)
	require.Len(t, m.Rows, 2)
	btn, ok := m.Rows[1].Buttons[0].(*tg.KeyboardButton)
	require.True(t, ok)
	assert.Equal(t, "Cancel ❌", btn.Text)
}

func TestMarkupInline(t *testing.T) {
	menu := chat.Menu{Kind: chat.MenuInline, Rows: [][]chat.Button{
		{{Label: "1", Data: "search_1"}, {Label: "2", Data: "search_2"}},
	}}
	m, ok := Markup(menu).(*tg.ReplyInlineMarkup)
	require.True(t, ok)
	require.Len(t, m.Rows[0].Buttons, 2)
	btn, ok := m.Rows[0].Buttons[1].(*tg.KeyboardButtonCallback)
	require.True(t, ok)
	assert.Equal(t, "2", btn.Text)
	assert.Equal(t, []byte("search_2"), btn.Data)
}

func TestMarkupRemoveAndNone(t *testing.T) {
	assert.IsType(t, &tg.ReplyKeyboardHide{}, Markup(chat.Remove()))
	assert.Nil(t, Markup(chat.Text("plain").Menu))
}

func TestPeers(t *testing.T) {
	p := NewPeers()
	_, known := p.Resolve(5)
	assert.False(t, known)

	p.Learn(tg.Entities{Users: map[int64]*tg.User{5: {ID: 5, AccessHash: 77}}})
	peer, known := p.Resolve(5)
	require.True(t, known)
	assert.Equal(t, &tg.InputPeerUser{UserID: 5, AccessHash: 77}, peer)
}

func TestGetMsgID(t *testing.T) {
	assert.Equal(t, 9, getMsgID(&tg.UpdateShortSentMessage{ID: 9}))
	assert.Equal(t, 4, getMsgID(&tg.Updates{Updates: []tg.UpdateClass{
		&tg.UpdateNewMessage{Message: &tg.Message{ID: 4}},
	}}))
	assert.Zero(t, getMsgID(&tg.UpdatesTooLong{}))
}

func TestDocumentMIME(t *testing.T) {
	assert.Equal(t, "audio/mpeg", mimeType(chat.Delivery{Path: "/tmp/track", Kind: chat.MediaAudio}))
	assert.Equal(t, "video/mp4", mimeType(chat.Delivery{Path: "/tmp/clip", Kind: chat.MediaVideo}))
	assert.Equal(t, "video/mp4", mimeType(chat.Delivery{Path: "/tmp/clip.mp4", Kind: chat.MediaVideo}))
}

func TestMediaFromUpdates(t *testing.T) {
	updates := &tg.Updates{Updates: []tg.UpdateClass{
		&tg.UpdateMessageID{ID: 5},
		&tg.UpdateNewMessage{Message: &tg.Message{
			ID: 5,
			Media: &tg.MessageMediaDocument{Document: &tg.Document{
				ID:            7,
				AccessHash:    8,
				FileReference: []byte{1, 2},
				Size:          1024,
			}},
		}},
	}}
	m := mediaFromUpdates(updates)
	require.NotNil(t, m)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, int64(8), m.AccessHash)
	assert.Equal(t, []byte{1, 2}, m.FileReference)
	assert.Equal(t, int64(1024), m.Size)

	assert.Nil(t, mediaFromUpdates(&tg.UpdateShortSentMessage{ID: 1}))
	assert.Nil(t, mediaFromUpdates(&tg.Updates{Updates: []tg.UpdateClass{
		&tg.UpdateNewMessage{Message: &tg.Message{ID: 1}},
	}}))
}

func TestResendMisses(t *testing.T) {
	ctx := context.Background()

	ok, err := NewTransport(nil, NewPeers(), nil).Resend(ctx, 1, "best|false|https://youtu.be/x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewTransport(nil, NewPeers(), cache.New(time.Hour)).Resend(ctx, 1, "best|false|https://youtu.be/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

// recordingInvoker captures every RPC request and fails it.
type recordingInvoker struct {
	requests []bin.Encoder
}

func (r *recordingInvoker) Invoke(_ context.Context, input bin.Encoder, _ bin.Decoder) error {
	r.requests = append(r.requests, input)
	return errors.New("offline")
}

func TestSendPromptAttachesMarkup(t *testing.T) {
	inv := &recordingInvoker{}
	tr := NewTransport(tg.NewClient(inv), NewPeers(), nil)
	ctx := context.Background()

	_, err := tr.SendPrompt(ctx, 7, chat.Prompt{Text: "pick", Menu: chat.Reply("Cancel ❌")})
	require.Error(t, err)
	_, err = tr.SendPrompt(ctx, 7, chat.Text("plain"))
	require.Error(t, err)

	require.Len(t, inv.requests, 2)
	withMenu, ok := inv.requests[0].(*tg.MessagesSendMessageRequest)
	require.True(t, ok)
	assert.Equal(t, "pick", withMenu.Message)
	assert.IsType(t, &tg.ReplyKeyboardMarkup{}, withMenu.ReplyMarkup)

	plain, ok := inv.requests[1].(*tg.MessagesSendMessageRequest)
	require.True(t, ok)
	assert.Equal(t, "plain", plain.Message)
	assert.Nil(t, plain.ReplyMarkup)
}
