package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/search"
	"github.com/pavelc4/aether-media-bot/internal/session"
)

const testUser = int64(100)

// artifact writes a file of size bytes and returns a result pointing at it.
func artifact(t *testing.T, dir, name string, size int) *downloader.Result {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return &downloader.Result{Path: path, Title: name, Size: int64(size)}
}

type fakeExtractor struct {
	t          *testing.T
	dir        string
	formats    []downloader.Format
	formatsErr error
	meta       downloader.Metadata
	metaErr    error
	size       int
	failURLs   map[string]error
	requests   []downloader.Request
	artifacts  []string
	panicOn    string
}

func (f *fakeExtractor) ListFormats(_ context.Context, url string) ([]downloader.Format, error) {
	if f.panicOn == url {
		panic("extractor exploded")
	}
	return f.formats, f.formatsErr
}

func (f *fakeExtractor) Metadata(context.Context, string) (downloader.Metadata, error) {
	return f.meta, f.metaErr
}

func (f *fakeExtractor) Download(_ context.Context, req downloader.Request) (*downloader.Result, error) {
	f.requests = append(f.requests, req)
	if err := f.failURLs[req.URL]; err != nil {
		return nil, err
	}
	size := f.size
	if size == 0 {
		size = 16
	}
	safe := strings.NewReplacer("/", "_", ":", "_")
	res := artifact(f.t, f.dir, "dl-"+safe.Replace(req.URL)+"-"+safe.Replace(req.Selector), size)
	f.artifacts = append(f.artifacts, res.Path)
	return res, nil
}

type fakeStories struct {
	t         *testing.T
	dir       string
	qualities map[string]string
	err       error
	fetched   []string
}

func (f *fakeStories) Qualities(context.Context, string) (map[string]string, error) {
	return f.qualities, f.err
}

func (f *fakeStories) FetchStory(_ context.Context, locator string) (*downloader.Result, error) {
	f.fetched = append(f.fetched, locator)
	return artifact(f.t, f.dir, "story.mp4", 8), nil
}

type fakeTracks struct {
	t       *testing.T
	dir     string
	fetched []string
}

func (f *fakeTracks) FetchTrack(_ context.Context, locator, title string) (*downloader.Result, error) {
	f.fetched = append(f.fetched, locator)
	res := artifact(f.t, f.dir, "track.mp3", 32)
	res.Title = title
	return res, nil
}

type fakeSearcher struct {
	items map[search.Kind][]search.Item
	err   error
	calls []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, kind search.Kind, limit int) ([]search.Item, error) {
	f.calls = append(f.calls, kind.String()+":"+query)
	if f.err != nil {
		return nil, &search.Error{Kind: kind, Query: query, Err: f.err}
	}
	items := f.items[kind]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type sentPrompt struct {
	UserID int64
	Prompt chat.Prompt
}

type fakeTransport struct {
	mu         sync.Mutex
	prompts    []sentPrompt
	edits      []chat.Prompt
	answers    []string
	deliveries []chat.Delivery
	deliverErr error
	// existed records whether each delivered file was present when sent.
	existed []bool
	// bounded records, per call, whether the context carried a deadline.
	bounded []bool
}

func (f *fakeTransport) noteDeadline(ctx context.Context) {
	_, ok := ctx.Deadline()
	f.bounded = append(f.bounded, ok)
}

func (f *fakeTransport) SendPrompt(ctx context.Context, userID int64, p chat.Prompt) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteDeadline(ctx)
	f.prompts = append(f.prompts, sentPrompt{UserID: userID, Prompt: p})
	return len(f.prompts), nil
}

func (f *fakeTransport) EditPrompt(ctx context.Context, _ int64, _ int, p chat.Prompt) error {
	f.noteDeadline(ctx)
	f.edits = append(f.edits, p)
	return nil
}

func (f *fakeTransport) AnswerCallback(ctx context.Context, _ int64, text string, _ bool) error {
	f.noteDeadline(ctx)
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeTransport) Deliver(_ context.Context, _ int64, d chat.Delivery) error {
	_, err := os.Stat(d.Path)
	f.existed = append(f.existed, err == nil)
	f.deliveries = append(f.deliveries, d)
	return f.deliverErr
}

func (f *fakeTransport) last() chat.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return chat.Prompt{}
	}
	return f.prompts[len(f.prompts)-1].Prompt
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.prompts))
	for _, p := range f.prompts {
		out = append(out, p.Prompt.Text)
	}
	return out
}

type recordedDownload struct {
	URL   string
	Title string
}

type fakeRecorder struct {
	users     []int64
	actions   []string
	downloads []recordedDownload
}

func (f *fakeRecorder) SaveUser(_ context.Context, userID int64, _ string) error {
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeRecorder) LogAction(_ context.Context, _ int64, action, _ string) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeRecorder) SaveDownload(_ context.Context, _ int64, url, title string, _ int64) error {
	f.downloads = append(f.downloads, recordedDownload{URL: url, Title: title})
	return nil
}

type harness struct {
	t         *testing.T
	engine    *Engine
	store     *session.MemoryStore
	extractor *fakeExtractor
	stories   *fakeStories
	tracks    *fakeTracks
	searcher  *fakeSearcher
	transport *fakeTransport
	recorder  *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	h := &harness{
		t:         t,
		store:     session.NewMemoryStore(time.Hour),
		extractor: &fakeExtractor{t: t, dir: dir},
		stories:   &fakeStories{t: t, dir: dir},
		tracks:    &fakeTracks{t: t, dir: dir},
		searcher:  &fakeSearcher{items: map[search.Kind][]search.Item{}},
		transport: &fakeTransport{},
		recorder:  &fakeRecorder{},
	}
	h.engine = New(Config{
		MaxUploadSize:   1 << 20,
		DevID:           999,
		DownloadTimeout: time.Minute,
		DeliveryTimeout: time.Minute,
		PromptTimeout:   time.Minute,
		TempDir:         dir,
	}, Deps{
		Sessions:  h.store,
		Extractor: h.extractor,
		Stories:   h.stories,
		Tracks:    h.tracks,
		Searcher:  h.searcher,
		Transport: h.transport,
		Recorder:  h.recorder,
	})
	return h
}

func (h *harness) text(s string) {
	h.t.Helper()
	require.NoError(h.t, h.engine.Handle(context.Background(), Event{Kind: EventText, UserID: testUser, Username: "alice", Text: s}))
}

func (h *harness) callback(data string) {
	h.t.Helper()
	require.NoError(h.t, h.engine.Handle(context.Background(), Event{Kind: EventCallback, UserID: testUser, Data: data, QueryID: 1, MessageID: 10}))
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	s, err := h.store.Get(context.Background(), testUser)
	require.NoError(h.t, err)
	return s
}

// fakeReuser remembers every delivered key and resends it afterwards.
type fakeReuser struct {
	known   map[string]bool
	resent  []string
	failErr error
	bounded []bool
}

func (f *fakeReuser) Resend(ctx context.Context, _ int64, key string) (bool, error) {
	_, ok := ctx.Deadline()
	f.bounded = append(f.bounded, ok)
	if f.failErr != nil {
		return false, f.failErr
	}
	if !f.known[key] {
		return false, nil
	}
	f.resent = append(f.resent, key)
	return true, nil
}
