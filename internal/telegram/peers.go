package telegram

import (
	"strconv"

	"github.com/gotd/td/tg"
	"github.com/patrickmn/go-cache"
)

// Peers remembers the access hash of every user seen in an update so that
// replies can address them later, including from background jobs.
type Peers struct {
	users *cache.Cache
}

func NewPeers() *Peers {
	return &Peers{users: cache.New(cache.NoExpiration, 0)}
}

func peerKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Learn records all users carried by an update.
func (p *Peers) Learn(e tg.Entities) {
	for id, u := range e.Users {
		p.users.Set(peerKey(id), &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}, cache.NoExpiration)
	}
}

func (p *Peers) Remember(u *tg.User) {
	p.users.Set(peerKey(u.ID), &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}, cache.NoExpiration)
}

// Resolve returns the input peer for userID. Unknown users get a zero access
// hash, which Telegram accepts for bots in private chats the user opened.
func (p *Peers) Resolve(userID int64) (tg.InputPeerClass, bool) {
	if v, ok := p.users.Get(peerKey(userID)); ok {
		return v.(*tg.InputPeerUser), true
	}
	return &tg.InputPeerUser{UserID: userID}, false
}
