package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pavelc4/aether-media-bot/internal/chat"
	"github.com/pavelc4/aether-media-bot/internal/provider"
	"github.com/pavelc4/aether-media-bot/internal/session"
)

// Callback payloads of inline menus.
const (
	cbSearchPrefix    = "search_"
	cbSearchCancel    = "search_cancel"
	cbMusicPagePrefix = "music_page_"
	cbMusicDLPrefix   = "music_dl_"
	cbMusicCancel     = "music_cancel"
	cbIgnore          = "ignore"
)

func mainMenu() chat.Menu {
	return chat.Reply(LabelSendLink, LabelSendMultiple, LabelSearchVideo, LabelSearchMusic, LabelContactDeveloper)
}

func cancelMenu() chat.Menu {
	return chat.Reply(LabelCancel)
}

func postDownloadMenu() chat.Menu {
	return chat.Reply(LabelDownloadMore, LabelSearchMore, LabelCancel)
}

var categoryActions = map[provider.Category][]string{
	provider.YouTube:     {LabelDownloadVideo, LabelDownloadAudio},
	provider.VkVideoClip: {LabelDownloadVkVideo},
	provider.VkStory:     {LabelDownloadVkStory},
	provider.Rutube:      {LabelDownloadRutube},
	provider.TikTok:      {LabelDownloadTikTok},
}

func actionMenu(c provider.Category) chat.Menu {
	labels := append([]string(nil), categoryActions[c]...)
	labels = append(labels, LabelBack, LabelCancel)
	return chat.Reply(labels...)
}

func qualityMenu(formats []session.Format) chat.Menu {
	labels := make([]string, 0, len(formats)+2)
	for _, f := range formats {
		labels = append(labels, f.Label())
	}
	labels = append(labels, LabelBack, LabelCancel)
	return chat.Reply(labels...)
}

func sortedLabels(qualities map[string]string) []string {
	labels := make([]string, 0, len(qualities))
	for l := range qualities {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, aerr := strconv.Atoi(labels[i])
		b, berr := strconv.Atoi(labels[j])
		if aerr == nil && berr == nil {
			return a > b
		}
		return labels[i] < labels[j]
	})
	return labels
}

func storyMenu(qualities map[string]string) chat.Menu {
	labels := append(sortedLabels(qualities), LabelBack, LabelCancel)
	return chat.Reply(labels...)
}

func searchMenu(n int) chat.Menu {
	row := make([]chat.Button, 0, n)
	for i := 1; i <= n; i++ {
		row = append(row, chat.Button{Label: strconv.Itoa(i), Data: cbSearchPrefix + strconv.Itoa(i)})
	}
	return chat.Menu{
		Kind: chat.MenuInline,
		Rows: [][]chat.Button{row, {{Label: LabelCancel, Data: cbSearchCancel}}},
	}
}

func searchText(query string, results []session.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s, %s views)\n", i+1, r.Title, formatClock(r.Duration), formatCount(r.Views))
	}
	return fmt.Sprintf(msgSearchResults, query, b.String())
}

func pageCount(n int) int {
	if n == 0 {
		return 0
	}
	return (n + musicPageSize - 1) / musicPageSize
}

func clampPage(page, n int) int {
	last := pageCount(n) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

func musicMenu(results []session.Result, page int) chat.Menu {
	start := page * musicPageSize
	end := start + musicPageSize
	if end > len(results) {
		end = len(results)
	}

	var rows [][]chat.Button
	for i := start; i < end; i++ {
		r := results[i]
		label := fmt.Sprintf("%s - %s (%s)", r.Artist, r.Title, formatClock(r.Duration))
		rows = append(rows, []chat.Button{{Label: label, Data: cbMusicDLPrefix + strconv.Itoa(i)}})
	}

	pages := pageCount(len(results))
	var nav []chat.Button
	if page > 0 {
		nav = append(nav, chat.Button{Label: "◀️", Data: cbMusicPagePrefix + strconv.Itoa(page-1)})
	}
	nav = append(nav, chat.Button{Label: fmt.Sprintf("%d/%d", page+1, pages), Data: cbIgnore})
	if page < pages-1 {
		nav = append(nav, chat.Button{Label: "▶️", Data: cbMusicPagePrefix + strconv.Itoa(page+1)})
	}
	rows = append(rows, nav, []chat.Button{{Label: LabelCancel, Data: cbMusicCancel}})
	return chat.Menu{Kind: chat.MenuInline, Rows: rows}
}

func formatClock(seconds int) string {
	if seconds <= 0 {
		return "?:??"
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatCount(n int64) string {
	switch {
	case n <= 0:
		return placeholderCount
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}
