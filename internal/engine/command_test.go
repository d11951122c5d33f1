package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCommand(t *testing.T) {
	cases := map[string]Command{
		LabelSendLink:            CmdSendLink,
		"send link":              CmdSendLink,
		"  SEND LINK!!  ":        CmdSendLink,
		"Download VK video/clip": CmdDownloadVkVideo,
		"download vk story":      CmdDownloadVkStory,
		"back":                   CmdBack,
		"/start":                 CmdStart,
		"/START@aether_bot":      CmdStart,
		"/cancel now":            CmdCancel,
		"/menu":                  CmdMenu,
		"/help":                  CmdNone,
		"https://youtu.be/abc":   CmdNone,
		"":                       CmdNone,
		"720p - mp4":             CmdNone,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClassifyCommand(in), in)
	}
}

func TestEveryLabelClassifies(t *testing.T) {
	for label, cmd := range labelCommands {
		assert.Equal(t, cmd, ClassifyCommand(label), label)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "download_audio", CmdDownloadAudio.String())
	assert.Equal(t, "unknown", Command(999).String())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "download something else", normalize("Download something else 📩"))
	assert.Equal(t, "", normalize("🔗🔗"))
}
