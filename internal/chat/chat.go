// Package chat holds the transport-neutral directives the conversation engine
// emits. The telegram package renders them to keyboards and uploads.
package chat

type MenuKind int

const (
	MenuNone MenuKind = iota
	// MenuReply is a persistent reply keyboard; a button sends its label as text.
	MenuReply
	// MenuInline is attached to the message; a button sends its Data as a callback.
	MenuInline
	// MenuRemove hides any reply keyboard.
	MenuRemove
)

type Button struct {
	Label string
	Data  string
}

type Menu struct {
	Kind MenuKind
	Rows [][]Button
}

type Prompt struct {
	Text string
	Menu Menu
}

type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaAudio
)

func (k MediaKind) String() string {
	if k == MediaAudio {
		return "audio"
	}
	return "video"
}

type Delivery struct {
	Path  string
	Title string
	Kind  MediaKind
	// Key lets the transport remember the upload for later reuse.
	Key   string
}

func Text(text string) Prompt {
	return Prompt{Text: text}
}

// Reply builds a reply keyboard with one button per row.
func Reply(labels ...string) Menu {
	rows := make([][]Button, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []Button{{Label: l}})
	}
	return Menu{Kind: MenuReply, Rows: rows}
}

func Remove() Menu {
	return Menu{Kind: MenuRemove}
}
