package engine

import (
	"strings"
	"unicode"
)

// Command is a recognised button press or slash command. Free text that is
// none of these classifies as CmdNone and is interpreted by the current state.
type Command int

const (
	CmdNone Command = iota
	CmdStart
	CmdMenu
	CmdCancel
	CmdSendLink
	CmdSendMultiple
	CmdSearchVideo
	CmdSearchMusic
	CmdContactDeveloper
	CmdDownloadVideo
	CmdDownloadAudio
	CmdDownloadVkVideo
	CmdDownloadVkStory
	CmdDownloadRutube
	CmdDownloadTikTok
	CmdBack
	CmdDownloadMore
	CmdSearchMore
)

// Button labels. Matching ignores case, emoji and punctuation.
const (
	LabelSendLink         = "Send link 🔗"
	LabelSendMultiple     = "Send multiple links 🔗🔗"
	LabelSearchVideo      = "Search video 🔍"
	LabelSearchMusic      = "Search VK music 🎧"
	LabelContactDeveloper = "Contact developer 🛠"
	LabelCancel           = "Cancel ❌"
	LabelDownloadVideo    = "Download video 🎥"
	LabelDownloadAudio    = "Download audio 🎵"
	LabelDownloadVkVideo  = "Download VK video/clip 🎥"
	LabelDownloadVkStory  = "Download VK story 🎥"
	LabelDownloadRutube   = "Download Rutube video 📺"
	LabelDownloadTikTok   = "Download TikTok video 📱"
	LabelBack             = "Back ◀️"
	LabelDownloadMore     = "Download something else 📩"
	LabelSearchMore       = "Search other videos 🔎"
)

var labelCommands = map[string]Command{
	LabelSendLink:         CmdSendLink,
	LabelSendMultiple:     CmdSendMultiple,
	LabelSearchVideo:      CmdSearchVideo,
	LabelSearchMusic:      CmdSearchMusic,
	LabelContactDeveloper: CmdContactDeveloper,
	LabelCancel:           CmdCancel,
	LabelDownloadVideo:    CmdDownloadVideo,
	LabelDownloadAudio:    CmdDownloadAudio,
	LabelDownloadVkVideo:  CmdDownloadVkVideo,
	LabelDownloadVkStory:  CmdDownloadVkStory,
	LabelDownloadRutube:   CmdDownloadRutube,
	LabelDownloadTikTok:   CmdDownloadTikTok,
	LabelBack:             CmdBack,
	LabelDownloadMore:     CmdDownloadMore,
	LabelSearchMore:       CmdSearchMore,
}

var slashCommands = map[string]Command{
	"/start":  CmdStart,
	"/menu":   CmdMenu,
	"/cancel": CmdCancel,
}

var commandIndex = buildIndex()

func buildIndex() map[string]Command {
	idx := make(map[string]Command, len(labelCommands))
	for label, cmd := range labelCommands {
		idx[normalize(label)] = cmd
	}
	return idx
}

// normalize lowercases s, turns every non letter or digit into a space and
// collapses runs of spaces.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func ClassifyCommand(text string) Command {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		word := strings.ToLower(strings.Fields(text)[0])
		if i := strings.Index(word, "@"); i >= 0 {
			word = word[:i]
		}
		return slashCommands[word]
	}
	if cmd, ok := commandIndex[normalize(text)]; ok {
		return cmd
	}
	return CmdNone
}

var commandNames = map[Command]string{
	CmdNone:             "none",
	CmdStart:            "start",
	CmdMenu:             "menu",
	CmdCancel:           "cancel",
	CmdSendLink:         "send_link",
	CmdSendMultiple:     "send_multiple",
	CmdSearchVideo:      "search_video",
	CmdSearchMusic:      "search_music",
	CmdContactDeveloper: "contact_developer",
	CmdDownloadVideo:    "download_video",
	CmdDownloadAudio:    "download_audio",
	CmdDownloadVkVideo:  "download_vk_video",
	CmdDownloadVkStory:  "download_vk_story",
	CmdDownloadRutube:   "download_rutube",
	CmdDownloadTikTok:   "download_tiktok",
	CmdBack:             "back",
	CmdDownloadMore:     "download_more",
	CmdSearchMore:       "search_more",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}
