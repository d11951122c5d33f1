package downloader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	pkghttp "github.com/pavelc4/aether-media-bot/pkg/http"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

const (
	DefaultVKAPI    = "https://api.vk.com/method/"
	storiesVersion  = "5.199"
	VKMobileAgent   = "KateMobileAndroid/56 lite-armeabi-v7a (Android 4.4.2; SDK 19; armeabi-v7a; unknown unknown; ru)"
	vkBrowserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.61 Safari/537.36"
	storyTempPrefix = "aether-vkstory-"
	trackTempPrefix = "aether-vkmusic-"
)

// VKHeaders are sent with yt-dlp downloads of VK videos and clips.
var VKHeaders = map[string]string{
	"User-Agent": vkBrowserAgent,
	"Referer":    "https://vk.com/",
}

// VK fetches story renditions and music tracks directly, bypassing yt-dlp.
type VK struct {
	api      *http.Client
	download *http.Client
	base     string
	token    string
	tempDir  string
}

func NewVK(token, tempDir string) *VK {
	return &VK{
		api:      pkghttp.NewAPIClient(),
		download: pkghttp.NewDownloadClient(),
		base:     DefaultVKAPI,
		token:    token,
		tempDir:  tempDir,
	}
}

// WithBase points the client at another API root.
func (v *VK) WithBase(base string) *VK {
	v.base = base
	return v
}

type storiesResponse struct {
	Response struct {
		Items []struct {
			Video *struct {
				Files map[string]string `json:"files"`
			} `json:"video"`
		} `json:"items"`
	} `json:"response"`
	Error *struct {
		Code int    `json:"error_code"`
		Msg  string `json:"error_msg"`
	} `json:"error"`
}

// storyID returns the owner_story part of a vk.com/story link.
func storyID(link string) string {
	parts := strings.SplitN(link, "story", 2)
	if len(parts) != 2 {
		return ""
	}
	id := parts[1]
	if i := strings.IndexAny(id, "?#/"); i >= 0 {
		id = id[:i]
	}
	return id
}

// Qualities maps quality labels ("720", "480", ...) to direct mp4 links for a
// video story. Photo stories have no renditions and yield an empty map.
func (v *VK) Qualities(ctx context.Context, link string) (map[string]string, error) {
	id := storyID(link)
	if id == "" {
		return nil, extractionErr("story qualities", link, errors.New("no story id in link"))
	}

	form := url.Values{"access_token": {v.token}, "stories": {id}}
	endpoint := v.base + "stories.getById?v=" + storiesVersion

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, extractionErr("story qualities", link, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.api.Do(req)
	if err != nil {
		return nil, extractionErr("story qualities", link, err)
	}
	defer resp.Body.Close()

	var body storiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, extractionErr("story qualities", link, errors.Wrap(err, "decode"))
	}
	if body.Error != nil {
		return nil, extractionErr("story qualities", link, errors.Errorf("vk api error %d: %s", body.Error.Code, body.Error.Msg))
	}
	if len(body.Response.Items) == 0 {
		return nil, extractionErr("story qualities", link, errors.New("story not found or private"))
	}

	qualities := make(map[string]string)
	item := body.Response.Items[0]
	if item.Video == nil {
		return qualities, nil
	}
	for key, src := range item.Video.Files {
		if !strings.Contains(key, "mp4") {
			continue
		}
		parts := strings.SplitN(key, "_", 2)
		if len(parts) != 2 {
			continue
		}
		qualities[parts[1]] = src
	}
	logger.Debug("VK story qualities", "story", id, "count", len(qualities))
	return qualities, nil
}

// PreferredQuality picks "720", then "480", then the lowest remaining label.
func PreferredQuality(qualities map[string]string) (label, locator string, ok bool) {
	for _, want := range []string{"720", "480"} {
		if src, found := qualities[want]; found {
			return want, src, true
		}
	}
	if len(qualities) == 0 {
		return "", "", false
	}
	labels := make([]string, 0, len(qualities))
	for l := range qualities {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels[0], qualities[labels[0]], true
}

func (v *VK) fetch(ctx context.Context, op, locator, prefix, ext string, headers map[string]string) (*Result, error) {
	dest := filepath.Join(v.tempDir, prefix+uuid.NewString()+ext)
	n, err := pkghttp.FetchToFile(ctx, v.download, locator, headers, dest)
	if err != nil {
		return nil, extractionErr(op, locator, err)
	}
	return &Result{Path: dest, Size: n}, nil
}

func (v *VK) FetchStory(ctx context.Context, locator string) (*Result, error) {
	res, err := v.fetch(ctx, "fetch story", locator, storyTempPrefix, ".mp4", nil)
	if err != nil {
		return nil, err
	}
	res.Title = "VK story"
	return res, nil
}

// FetchTrack downloads an audio URL returned by music search. VK serves a
// silent stub unless the mobile client user agent is presented.
func (v *VK) FetchTrack(ctx context.Context, locator, title string) (*Result, error) {
	res, err := v.fetch(ctx, "fetch track", locator, trackTempPrefix, ".mp3", map[string]string{"User-Agent": VKMobileAgent})
	if err != nil {
		return nil, err
	}
	if res.Size < 10*1024 {
		logger.Warn("VK track suspiciously small", "title", title, "size", res.Size)
	}
	res.Title = title
	return res, nil
}
