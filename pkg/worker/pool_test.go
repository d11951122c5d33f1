package worker

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := NewPool(4)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		assert.True(t, p.Submit(func() error {
			n.Add(1)
			return nil
		}))
	}
	p.Stop()
	assert.Equal(t, int64(100), n.Load())
}

func TestPoolSurvivesFailures(t *testing.T) {
	p := NewPool(1)
	var n atomic.Int64
	p.Submit(func() error { return errors.New("boom") })
	p.Submit(func() error { panic("bad job") })
	p.Submit(func() error {
		n.Add(1)
		return nil
	})
	p.Stop()
	assert.Equal(t, int64(1), n.Load())
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(2)
	p.Stop()
	p.Stop()
	assert.False(t, p.Submit(func() error { return nil }))
}
