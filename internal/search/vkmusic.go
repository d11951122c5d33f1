package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/pavelc4/aether-media-bot/internal/downloader"
	pkghttp "github.com/pavelc4/aether-media-bot/pkg/http"
)

const audioVersion = "5.95"

// VKMusic queries audio.search with a user token issued to the Kate Mobile
// client; other tokens are refused by the audio API.
type VKMusic struct {
	client *http.Client
	base   string
	token  string
}

func NewVKMusic(token string) *VKMusic {
	return &VKMusic{client: pkghttp.NewAPIClient(), base: downloader.DefaultVKAPI, token: token}
}

func (v *VKMusic) WithBase(base string) *VKMusic {
	v.base = base
	return v
}

type audioResponse struct {
	Response struct {
		Items []struct {
			Artist   string `json:"artist"`
			Title    string `json:"title"`
			URL      string `json:"url"`
			Duration int    `json:"duration"`
		} `json:"items"`
	} `json:"response"`
	Error *struct {
		Code int    `json:"error_code"`
		Msg  string `json:"error_msg"`
	} `json:"error"`
}

func (v *VKMusic) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if v.token == "" {
		return nil, errors.New("vk music token is not configured")
	}
	params := url.Values{
		"q":            {query},
		"count":        {strconv.Itoa(limit)},
		"access_token": {v.token},
		"v":            {audioVersion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.base+"audio.search?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", downloader.VKMobileAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "audio.search")
	}
	defer resp.Body.Close()

	var body audioResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode audio.search")
	}
	if body.Error != nil {
		return nil, errors.Errorf("vk api error %d: %s", body.Error.Code, body.Error.Msg)
	}

	items := make([]Item, 0, len(body.Response.Items))
	for _, it := range body.Response.Items {
		// Tracks blocked by rights holders come back without a link.
		if it.URL == "" {
			continue
		}
		items = append(items, Item{
			Artist:   it.Artist,
			Title:    it.Title,
			URL:      it.URL,
			Duration: it.Duration,
		})
	}
	return items, nil
}
