package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "title": "Sample",
  "uploader": "Chan",
  "view_count": 1200,
  "like_count": 30,
  "formats": [
    {"format_id": "140", "ext": "m4a", "resolution": "audio only", "acodec": "mp4a", "vcodec": "none"},
    {"format_id": "137", "ext": "mp4", "resolution": "1920x1080", "acodec": "none", "vcodec": "avc1"},
    {"format_id": "18", "ext": "mp4", "resolution": "640x360", "acodec": "mp4a", "vcodec": "avc1"},
    {"format_id": "22", "ext": "mp4", "resolution": "1280x720", "acodec": "mp4a", "vcodec": "avc1"}
  ]
}`

func fakeRunner(out string, err error, seen *[]string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if seen != nil {
			*seen = append([]string{name}, args...)
		}
		return []byte(out), err
	}
}

func TestListFormatsKeepsMuxed(t *testing.T) {
	y := NewYtDlp("yt-dlp", t.TempDir(), WithRunner(fakeRunner(sampleJSON, nil, nil)))

	formats, err := y.ListFormats(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, []Format{
		{ID: "18", Resolution: "640x360", Ext: "mp4"},
		{ID: "22", Resolution: "1280x720", Ext: "mp4"},
	}, formats)
}

func TestListFormatsFailure(t *testing.T) {
	y := NewYtDlp("yt-dlp", t.TempDir(), WithRunner(fakeRunner("", errors.New("boom"), nil)))

	_, err := y.ListFormats(context.Background(), "https://youtu.be/x")
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "list formats", ee.Op)
}

func TestMetadata(t *testing.T) {
	y := NewYtDlp("yt-dlp", t.TempDir(), WithRunner(fakeRunner(sampleJSON, nil, nil)))

	meta, err := y.Metadata(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, Metadata{Title: "Sample", Uploader: "Chan", Views: 1200, Likes: 30}, meta)
}

func TestDownloadAudioArgs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(file, []byte("abc"), 0o644))

	var seen []string
	y := NewYtDlp("yt-dlp", dir, WithRunner(fakeRunner("Song Title\n"+file+"\n", nil, &seen)))

	res, err := y.Download(context.Background(), Request{
		URL:          "https://youtu.be/x",
		Selector:     "bestaudio/best",
		ExtractAudio: true,
		Headers:      map[string]string{"Referer": "https://vk.com/"},
	})
	require.NoError(t, err)
	assert.Equal(t, file, res.Path)
	assert.Equal(t, "Song Title", res.Title)
	assert.Equal(t, int64(3), res.Size)

	joined := strings.Join(seen, " ")
	assert.Contains(t, joined, "-f bestaudio/best")
	assert.Contains(t, joined, "--audio-format mp3")
	assert.Contains(t, joined, "--add-header Referer:https://vk.com/")
	assert.Equal(t, "https://youtu.be/x", seen[len(seen)-1])
	assert.Equal(t, "--", seen[len(seen)-2])
}

func TestURLNeverParsedAsOption(t *testing.T) {
	const hostile = "--update-to=attacker/youtube.com"
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(file, []byte("abc"), 0o644))

	var seen []string
	y := NewYtDlp("yt-dlp", dir, WithRunner(fakeRunner("Clip\n"+file+"\n", nil, &seen)))
	_, err := y.Download(context.Background(), Request{URL: hostile})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(seen), 2)
	assert.Equal(t, []string{"--", hostile}, seen[len(seen)-2:])

	y = NewYtDlp("yt-dlp", dir, WithRunner(fakeRunner(sampleJSON, nil, &seen)))
	_, err = y.Metadata(context.Background(), hostile)
	require.NoError(t, err)
	assert.Equal(t, []string{"--", hostile}, seen[len(seen)-2:])
}

func TestDownloadNoOutput(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "partial")
	require.NoError(t, os.WriteFile(dest+".mp4.part", []byte("x"), 0o644))

	y := NewYtDlp("yt-dlp", dir, WithRunner(fakeRunner("", nil, nil)))
	_, err := y.Download(context.Background(), Request{URL: "u", Dest: dest})
	var ee *ExtractionError
	assert.ErrorAs(t, err, &ee)
	assert.NoFileExists(t, dest+".mp4.part")
}

func TestDownloadMissingFileRemovesPartials(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "partial")
	require.NoError(t, os.WriteFile(dest+".webm.part", []byte("x"), 0o644))

	y := NewYtDlp("yt-dlp", dir, WithRunner(fakeRunner("Title\n"+dest+".mp4\n", nil, nil)))
	_, err := y.Download(context.Background(), Request{URL: "u", Dest: dest})
	require.Error(t, err)
	assert.NoFileExists(t, dest+".webm.part")
}

func TestPreferredQuality(t *testing.T) {
	label, src, ok := PreferredQuality(map[string]string{"480": "u1"})
	require.True(t, ok)
	assert.Equal(t, "480", label)
	assert.Equal(t, "u1", src)

	_, src, _ = PreferredQuality(map[string]string{"720": "u2", "480": "u1"})
	assert.Equal(t, "u2", src)

	label, src, _ = PreferredQuality(map[string]string{"360": "a", "240": "b"})
	assert.Equal(t, "240", label)
	assert.Equal(t, "b", src)

	_, _, ok = PreferredQuality(nil)
	assert.False(t, ok)
}

func TestStoryID(t *testing.T) {
	assert.Equal(t, "-123_456", storyID("https://vk.com/story-123_456"))
	assert.Equal(t, "1_2", storyID("https://vk.com/story1_2?list=x"))
	assert.Empty(t, storyID("https://vk.com/video1_2"))
}

func TestQualities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "-1_2", r.PostForm.Get("stories"))
		assert.Equal(t, "tok", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"response":{"items":[{"video":{"files":{
			"mp4_720":"http://x/720","mp4_480":"http://x/480","hls":"http://x/m3u8"}}}]}}`))
	}))
	defer srv.Close()

	vk := NewVK("tok", t.TempDir()).WithBase(srv.URL + "/")
	q, err := vk.Qualities(context.Background(), "https://vk.com/story-1_2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"720": "http://x/720", "480": "http://x/480"}, q)
}

func TestQualitiesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"error_code":5,"error_msg":"auth failed"}}`))
	}))
	defer srv.Close()

	vk := NewVK("", t.TempDir()).WithBase(srv.URL + "/")
	_, err := vk.Qualities(context.Background(), "https://vk.com/story-1_2")
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "auth failed")
}

func TestFetchTrackUsesMobileAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, VKMobileAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	vk := NewVK("", t.TempDir())
	res, err := vk.FetchTrack(context.Background(), srv.URL, "Artist - Song")
	require.NoError(t, err)
	assert.Equal(t, "Artist - Song", res.Title)
	assert.FileExists(t, res.Path)
	require.NoError(t, Discard(res.Path))
	require.NoError(t, Discard(res.Path))
}
