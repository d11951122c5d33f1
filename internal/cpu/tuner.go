// Package cpu sizes transfer parallelism to the current processor load.
package cpu

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

const sampleInterval = 200 * time.Millisecond

// Tuner picks a worker count between Min and Max: high load gets fewer
// workers, an idle machine gets more.
type Tuner struct {
	Min, Max int
	// Fallback is used when the load cannot be sampled.
	Fallback int
	sample   func(ctx context.Context) (float64, error)
}

func NewTuner(min, max int) *Tuner {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &Tuner{
		Min:      min,
		Max:      max,
		Fallback: (min + max) / 2,
		sample:   samplePercent,
	}
}

func samplePercent(ctx context.Context) (float64, error) {
	p, err := cpu.PercentWithContext(ctx, sampleInterval, false)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, errors.New("no cpu samples")
	}
	return p[0], nil
}

// Threads samples the load and returns the worker count for it.
func (t *Tuner) Threads(ctx context.Context) int {
	percent, err := t.sample(ctx)
	if err != nil {
		logger.Debug("CPU sample failed, using fallback", "error", err, "threads", t.Fallback)
		return t.Fallback
	}
	n := Scale(percent, t.Min, t.Max)
	logger.Debug("Upload threads tuned", "cpu", percent, "threads", n)
	return n
}

// Scale maps a load percentage onto [min, max]. Loads up to 20% get max,
// loads from 85% get min, and the range between is interpolated.
func Scale(percent float64, min, max int) int {
	const low, high = 20.0, 85.0
	switch {
	case percent <= low:
		return max
	case percent >= high:
		return min
	}
	frac := (high - percent) / (high - low)
	return min + int(frac*float64(max-min)+0.5)
}
