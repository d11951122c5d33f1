package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store holds sessions keyed by user id. Sessions handed out are copies;
// changes are only persisted through Update.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Update(ctx context.Context, userID int64, mutate func(*Session)) (*Session, error)
	Clear(ctx context.Context, userID int64) (*Session, error)
}

type MemoryStore struct {
	cache *cache.Cache
	mu    sync.Mutex
}

// NewMemoryStore evicts sessions that have not been touched for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cleanup := ttl / 2
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{cache: cache.New(ttl, cleanup)}
}

func memoryKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m *MemoryStore) load(userID int64) *Session {
	if v, ok := m.cache.Get(memoryKey(userID)); ok {
		return v.(*Session)
	}
	s := New(userID)
	m.cache.SetDefault(memoryKey(userID), s)
	return s
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(userID).Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, userID int64, mutate func(*Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(userID).Clone()
	mutate(s)
	s.UpdatedAt = time.Now()
	m.cache.SetDefault(memoryKey(userID), s)
	return s.Clone(), nil
}

func (m *MemoryStore) Clear(ctx context.Context, userID int64) (*Session, error) {
	return m.Update(ctx, userID, (*Session).Reset)
}

func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
