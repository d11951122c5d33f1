package stats

import (
	"time"
)

type Snapshot struct {
	Events          int64
	Searches        int64
	Downloads       int64
	FailedDownloads int64
	TotalBytes      int64
	AvgDuration     time.Duration
	Uptime          time.Duration
	LastDownload    time.Time
	Categories      map[string]int64

	totalDuration time.Duration
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.tally
	s.Categories = make(map[string]int64, len(c.tally.Categories))
	for k, v := range c.tally.Categories {
		s.Categories[k] = v
	}
	if s.Downloads > 0 {
		s.AvgDuration = s.totalDuration / time.Duration(s.Downloads)
	}
	s.Uptime = time.Since(c.start)
	return s
}
