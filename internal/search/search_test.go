package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/downloader"
)

type stubProvider struct {
	items []Item
	err   error
}

func (s stubProvider) Search(context.Context, string, int) ([]Item, error) {
	return s.items, s.err
}

func TestServiceEmptyIsNotError(t *testing.T) {
	svc := NewService(stubProvider{}, nil)
	items, err := svc.Search(context.Background(), "cats", Video, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServiceWrapsFailure(t *testing.T) {
	svc := NewService(stubProvider{err: errors.New("offline")}, nil)
	_, err := svc.Search(context.Background(), "cats", Video, 5)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Video, se.Kind)
	assert.Equal(t, "cats", se.Query)
}

func TestServiceMissingProvider(t *testing.T) {
	svc := NewService(stubProvider{}, nil)
	_, err := svc.Search(context.Background(), "song", Music, 5)
	var se *Error
	assert.ErrorAs(t, err, &se)
}

func TestServiceTrimsToLimit(t *testing.T) {
	svc := NewService(stubProvider{items: make([]Item, 8)}, nil)
	items, err := svc.Search(context.Background(), "x", Video, 5)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestYouTubeSearch(t *testing.T) {
	var args []string
	run := downloader.Runner(func(_ context.Context, _ string, a ...string) ([]byte, error) {
		args = a
		return []byte(`{"entries":[
			{"id":"abc","title":"First","url":"https://www.youtube.com/watch?v=abc","duration":61,"view_count":10},
			{"id":"def","title":"Second","duration":5}
		]}`), nil
	})

	items, err := NewYouTube("yt-dlp", run).Search(context.Background(), "lofi", 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ytsearch5:lofi", args[len(args)-1])
	assert.Equal(t, "--", args[len(args)-2])
	assert.Equal(t, Item{Title: "First", URL: "https://www.youtube.com/watch?v=abc", Duration: 61, Views: 10}, items[0])
	assert.Equal(t, "https://www.youtube.com/watch?v=def", items[1].URL)
}

func TestVKMusicSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio.search", r.URL.Path)
		assert.Equal(t, "queen", r.URL.Query().Get("q"))
		assert.Equal(t, downloader.VKMobileAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"response":{"count":2,"items":[
			{"artist":"Queen","title":"Bohemian Rhapsody","url":"http://cdn/1.mp3","duration":354},
			{"artist":"Queen","title":"Blocked","url":"","duration":100}
		]}}`))
	}))
	defer srv.Close()

	items, err := NewVKMusic("tok").WithBase(srv.URL+"/").Search(context.Background(), "queen", 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Queen", items[0].Artist)
	assert.Equal(t, 354, items[0].Duration)
}

func TestVKMusicWithoutToken(t *testing.T) {
	_, err := NewVKMusic("").Search(context.Background(), "x", 5)
	assert.Error(t, err)
}
