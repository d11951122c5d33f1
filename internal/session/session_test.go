package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelc4/aether-media-bot/internal/provider"
)

func populated(s *Session) int {
	n := 0
	if len(s.Formats) > 0 {
		n++
	}
	if len(s.Qualities) > 0 {
		n++
	}
	if len(s.Results) > 0 {
		n++
	}
	return n
}

func TestConstructorsKeepOneChoice(t *testing.T) {
	s := New(1)
	steps := []func(){
		func() { s.AwaitURL() },
		func() { s.AwaitAction("https://youtu.be/x", provider.YouTube) },
		func() { s.AwaitVideoQuality([]Format{{ID: "22", Resolution: "720p", Ext: "mp4"}}) },
		func() { s.AwaitStoryQuality(map[string]string{"720": "u"}) },
		func() { s.AwaitSearchSelection([]Result{{Title: "a", URL: "u"}}) },
		func() { s.AwaitMusicSelection([]Result{{Title: "b", URL: "u"}}) },
		func() { s.BackToAction() },
		func() { s.Enqueue([]string{"a", "b"}) },
		func() { s.Reset() },
	}

	for i, step := range steps {
		step()
		assert.LessOrEqual(t, populated(s), 1, "step %d", i)
	}
}

func TestValidate(t *testing.T) {
	s := New(7)
	require.NoError(t, s.Validate())

	s.AwaitAction("https://youtu.be/x", provider.YouTube)
	s.AwaitVideoQuality([]Format{{ID: "18", Resolution: "360p", Ext: "mp4"}})
	require.NoError(t, s.Validate())

	s.Formats = nil
	assert.Error(t, s.Validate())

	s = New(7)
	s.State = AwaitingSearchSelection
	assert.Error(t, s.Validate())

	s = New(7)
	s.Formats = []Format{{ID: "1"}}
	s.Results = []Result{{Title: "x"}}
	assert.Error(t, s.Validate())
}

func TestPopQueueFIFO(t *testing.T) {
	s := New(1)
	s.Enqueue([]string{"a", "b", "c"})

	var got []string
	for {
		u, ok := s.PopQueue()
		if !ok {
			break
		}
		got = append(got, u)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Nil(t, s.Queue)
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := New(1)
	s.AwaitStoryQuality(map[string]string{"480": "u1"})
	c := s.Clone()
	c.Qualities["720"] = "u2"
	assert.Len(t, s.Qualities, 1)
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "720p - mp4", Format{Resolution: "720p", Ext: "mp4"}.Label())
}
