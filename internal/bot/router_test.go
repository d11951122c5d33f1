package bot

import (
	"context"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/engine"
)

type recordPeers struct{ learned int }

func (p *recordPeers) Learn(tg.Entities) { p.learned++ }

type denyAfter struct{ left int }

func (d *denyAfter) Allow(int64) bool {
	d.left--
	return d.left >= 0
}

func newTestRouter(limit int) (*Router, *[]engine.Event, *int) {
	var events []engine.Event
	throttled := 0
	r := NewRouter(func(ev engine.Event) bool {
		events = append(events, ev)
		return true
	}, &denyAfter{left: limit}, &recordPeers{}, nil, nil, func() { throttled++ })
	return r, &events, &throttled
}

func userMessage(userID int64, text string) *tg.UpdateNewMessage {
	return &tg.UpdateNewMessage{Message: &tg.Message{
		ID:      1,
		PeerID:  &tg.PeerUser{UserID: userID},
		Message: text,
	}}
}

func TestRouterDispatchesText(t *testing.T) {
	r, events, _ := newTestRouter(10)
	e := tg.Entities{Users: map[int64]*tg.User{7: {ID: 7, Username: "bob"}}}

	require.NoError(t, r.OnMessage(context.Background(), e, userMessage(7, "Send link 🔗")))
	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, engine.EventText, ev.Kind)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, "bob", ev.Username)
	assert.Equal(t, "Send link 🔗", ev.Text)
}

func TestRouterIgnoresGroupsAndOutgoing(t *testing.T) {
	r, events, _ := newTestRouter(10)

	group := &tg.UpdateNewMessage{Message: &tg.Message{PeerID: &tg.PeerChat{ChatID: 1}, Message: "hi"}}
	require.NoError(t, r.OnMessage(context.Background(), tg.Entities{}, group))

	out := userMessage(7, "hi")
	out.Message.(*tg.Message).Out = true
	require.NoError(t, r.OnMessage(context.Background(), tg.Entities{}, out))

	assert.Empty(t, *events)
}

func TestRouterRateLimits(t *testing.T) {
	r, events, throttled := newTestRouter(2)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.OnMessage(context.Background(), tg.Entities{}, userMessage(7, "x")))
	}
	assert.Len(t, *events, 2)
	assert.Equal(t, 3, *throttled)
}

func TestRouterCallback(t *testing.T) {
	r, events, _ := newTestRouter(10)
	upd := &tg.UpdateBotCallbackQuery{QueryID: 55, UserID: 7, MsgID: 12, Data: []byte("music_page_1")}

	require.NoError(t, r.OnCallback(context.Background(), tg.Entities{}, upd))
	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, engine.EventCallback, ev.Kind)
	assert.Equal(t, "music_page_1", ev.Data)
	assert.Equal(t, int64(55), ev.QueryID)
	assert.Equal(t, 12, ev.MessageID)
}

func TestCommandWord(t *testing.T) {
	assert.Equal(t, "/stats", commandWord("/Stats@aether_bot now"))
	assert.Equal(t, "", commandWord("hello /stats"))
}
