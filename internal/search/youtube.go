package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/pavelc4/aether-media-bot/internal/downloader"
)

// YouTube searches through yt-dlp's ytsearchN: pseudo URL.
type YouTube struct {
	bin string
	run downloader.Runner
}

func NewYouTube(bin string, run downloader.Runner) *YouTube {
	if bin == "" {
		bin = "yt-dlp"
	}
	if run == nil {
		run = downloader.ExecRunner
	}
	return &YouTube{bin: bin, run: run}
}

type flatPlaylist struct {
	Entries []struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		URL       string  `json:"url"`
		Duration  float64 `json:"duration"`
		ViewCount int64   `json:"view_count"`
	} `json:"entries"`
}

func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 5
	}
	out, err := y.run(ctx, y.bin,
		"--flat-playlist", "--no-warnings", "-J", "--",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	)
	if err != nil {
		return nil, err
	}

	var pl flatPlaylist
	if err := json.Unmarshal(out, &pl); err != nil {
		return nil, errors.Wrap(err, "decode search results")
	}

	items := make([]Item, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		url := e.URL
		if url == "" && e.ID != "" {
			url = "https://www.youtube.com/watch?v=" + e.ID
		}
		if url == "" {
			continue
		}
		items = append(items, Item{
			Title:    e.Title,
			URL:      url,
			Duration: int(e.Duration),
			Views:    e.ViewCount,
		})
	}
	return items, nil
}
