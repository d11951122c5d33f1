package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/html"
	"github.com/gotd/td/tg"

	"github.com/pavelc4/aether-media-bot/internal/stats"
	"github.com/pavelc4/aether-media-bot/internal/storage"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
	"github.com/pavelc4/aether-media-bot/pkg/utils"
)

// TotalsSource reports lifetime figures from the database.
type TotalsSource interface {
	Totals(ctx context.Context) (storage.Totals, error)
}

type AdminHandler struct {
	api       *tg.Client
	devID     int64
	collector *stats.Collector
	totals    TotalsSource
	pending   func() int
	diskPath  string
}

// NewAdminHandler builds the /stats handler. totals may be nil when no
// database is configured.
func NewAdminHandler(api *tg.Client, devID int64, collector *stats.Collector, totals TotalsSource, pending func() int, diskPath string) *AdminHandler {
	return &AdminHandler{
		api:       api,
		devID:     devID,
		collector: collector,
		totals:    totals,
		pending:   pending,
		diskPath:  diskPath,
	}
}

func (h *AdminHandler) HandleStats(ctx context.Context, e tg.Entities, msg *tg.Message) error {
	if h.devID == 0 || SenderID(msg) != h.devID {
		return nil
	}

	inputPeer, err := resolvePeer(msg.PeerID, e)
	if err != nil {
		return err
	}

	text := h.render(ctx)
	_, err = message.NewSender(h.api).To(inputPeer).Reply(msg.ID).StyledText(ctx, html.String(nil, text))
	return err
}

func (h *AdminHandler) render(ctx context.Context) string {
	sysInfo := stats.GetSystemInfo(h.diskPath)
	snap := h.collector.Snapshot()
	pending := 0
	if h.pending != nil {
		pending = h.pending()
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"<b>System Status</b>\n\n"+
			"<b>OS Info</b>\n"+
			"├ System : <code>%s</code>\n"+
			"├ Host : <code>%s</code>\n"+
			"└ Uptime : <code>%s</code>\n\n"+
			"<b>CPU</b>\n"+
			"├ Cores : <code>%d</code>\n"+
			"├ Usage : <code>%.2f%%</code>\n"+
			"└ Load : <code>%.2f %.2f %.2f</code>\n\n"+
			"<b>Memory</b>\n"+
			"├ Used : <code>%s / %s (%.1f%%)</code>\n"+
			"└ Free : <code>%s</code>\n\n"+
			"<b>Disk</b>\n"+
			"└ Free : <code>%s / %s</code>\n\n"+
			"<b>Bot Process</b>\n"+
			"├ Uptime : <code>%s</code>\n"+
			"├ PID : <code>%d</code>\n"+
			"├ CPU : <code>%.2f%%</code>\n"+
			"├ Mem : <code>%s</code>\n"+
			"├ Routines : <code>%d</code>\n"+
			"├ Heap : <code>%s</code>\n"+
			"└ Go Ver : <code>%s</code>\n\n",
		sysInfo.OS,
		sysInfo.Hostname,
		sysInfo.SystemUptime.Round(time.Second),
		sysInfo.CPUCores,
		sysInfo.CPUUsage,
		sysInfo.Load1, sysInfo.Load5, sysInfo.Load15,
		utils.FormatFileSize(int64(sysInfo.MemUsed)), utils.FormatFileSize(int64(sysInfo.MemTotal)), sysInfo.MemPercent,
		utils.FormatFileSize(int64(sysInfo.MemAvailable)),
		utils.FormatFileSize(int64(sysInfo.DiskFree)), utils.FormatFileSize(int64(sysInfo.DiskTotal)),
		utils.FormatDuration(uint64(snap.Uptime.Seconds())),
		sysInfo.ProcessPID,
		sysInfo.ProcessCPU,
		utils.FormatFileSize(int64(sysInfo.ProcessMem)),
		sysInfo.Goroutines,
		utils.FormatFileSize(int64(sysInfo.HeapAlloc)),
		sysInfo.GoVersion,
	)

	fmt.Fprintf(&b,
		"<b>Activity</b>\n"+
			"├ Events : <code>%d</code>\n"+
			"├ Pending : <code>%d</code>\n"+
			"├ Searches : <code>%d</code>\n"+
			"├ Downloads : <code>%d ok / %d failed</code>\n"+
			"├ Sent : <code>%s</code>\n"+
			"└ Avg time : <code>%s</code>\n",
		snap.Events,
		pending,
		snap.Searches,
		snap.Downloads, snap.FailedDownloads,
		utils.FormatFileSize(snap.TotalBytes),
		snap.AvgDuration.Round(time.Millisecond),
	)

	if len(snap.Categories) > 0 {
		names := make([]string, 0, len(snap.Categories))
		for name := range snap.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n<b>Platforms</b>\n")
		for i, name := range names {
			branch := "├"
			if i == len(names)-1 {
				branch = "└"
			}
			fmt.Fprintf(&b, "%s %s : <code>%d</code>\n", branch, name, snap.Categories[name])
		}
	}

	if h.totals != nil {
		t, err := h.totals.Totals(ctx)
		if err != nil {
			logger.Warn("Failed to load totals", "error", err)
		} else {
			fmt.Fprintf(&b,
				"\n<b>All time</b>\n"+
					"├ Users : <code>%d</code>\n"+
					"├ Downloads : <code>%d</code>\n"+
					"└ Sent : <code>%s</code>\n",
				t.Users, t.Downloads, utils.FormatFileSize(t.Bytes),
			)
		}
	}
	return b.String()
}
