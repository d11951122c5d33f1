package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetForget(t *testing.T) {
	c := New(time.Hour)

	_, ok := c.Get("best|https://youtu.be/x")
	assert.False(t, ok)

	c.Set("best|https://youtu.be/x", &Media{ID: 1, AccessHash: 2, FileReference: []byte{3}, Title: "clip"})
	m, ok := c.Get("best|https://youtu.be/x")
	require.True(t, ok)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, "clip", m.Title)
	assert.Equal(t, 1, c.Len())

	c.Forget("best|https://youtu.be/x")
	_, ok = c.Get("best|https://youtu.be/x")
	assert.False(t, ok)
}

func TestSetIgnoresEmpty(t *testing.T) {
	c := New(time.Hour)
	c.Set("", &Media{ID: 1})
	c.Set("k", nil)
	assert.Equal(t, 0, c.Len())
}

func TestEntriesExpire(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Set("k", &Media{ID: 1})
	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	c := New(0)
	c.Set("k", &Media{ID: 1})
	_, ok := c.Get("k")
	assert.True(t, ok)
}
