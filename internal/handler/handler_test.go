package handler

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/stats"
	"github.com/pavelc4/aether-media-bot/internal/storage"
)

type fakeTotals struct {
	t   storage.Totals
	err error
}

func (f fakeTotals) Totals(context.Context) (storage.Totals, error) { return f.t, f.err }

func TestRenderStats(t *testing.T) {
	c := stats.NewCollector(nil)
	c.Download("YouTube", "video", "ok", 2048, time.Second)
	c.Download("VK", "video", "ok", 1024, time.Second)

	h := NewAdminHandler(nil, 1, c, fakeTotals{t: storage.Totals{Users: 12, Downloads: 40, Bytes: 1 << 20}}, func() int { return 3 }, t.TempDir())
	text := h.render(context.Background())

	assert.Contains(t, text, "<b>System Status</b>")
	assert.Contains(t, text, "Pending : <code>3</code>")
	assert.Contains(t, text, "Downloads : <code>2 ok / 0 failed</code>")
	assert.Contains(t, text, "├ VK : <code>1</code>")
	assert.Contains(t, text, "└ YouTube : <code>1</code>")
	assert.Contains(t, text, "Users : <code>12</code>")
}

func TestRenderStatsWithoutDatabase(t *testing.T) {
	h := NewAdminHandler(nil, 1, stats.NewCollector(nil), fakeTotals{err: errors.New("down")}, nil, "")
	text := h.render(context.Background())
	assert.NotContains(t, text, "All time")
}

func TestStatsIgnoresStrangers(t *testing.T) {
	h := NewAdminHandler(nil, 1, stats.NewCollector(nil), nil, nil, "")
	msg := &tg.Message{PeerID: &tg.PeerUser{UserID: 2}}
	require.NoError(t, h.HandleStats(context.Background(), tg.Entities{}, msg))
}

func TestSenderID(t *testing.T) {
	msg := &tg.Message{PeerID: &tg.PeerUser{UserID: 5}}
	assert.Equal(t, int64(5), SenderID(msg))

	msg = &tg.Message{PeerID: &tg.PeerChat{ChatID: 1}}
	msg.SetFromID(&tg.PeerUser{UserID: 8})
	assert.Equal(t, int64(8), SenderID(msg))
}

func TestResolvePeer(t *testing.T) {
	e := tg.Entities{Users: map[int64]*tg.User{5: {ID: 5, AccessHash: 9}}}
	peer, err := resolvePeer(&tg.PeerUser{UserID: 5}, e)
	require.NoError(t, err)
	assert.Equal(t, &tg.InputPeerUser{UserID: 5, AccessHash: 9}, peer)

	_, err = resolvePeer(&tg.PeerUser{UserID: 6}, e)
	assert.Error(t, err)
}
