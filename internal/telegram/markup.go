package telegram

import (
	"github.com/gotd/td/tg"

	"github.com/pavelc4/aether-media-bot/internal/cache"
	"github.com/pavelc4/aether-media-bot/internal/chat"
)

// Markup renders a menu as Telegram reply markup. MenuNone yields nil, which
// leaves the current keyboard untouched.
func Markup(m chat.Menu) tg.ReplyMarkupClass {
	switch m.Kind {
	case chat.MenuReply:
		rows := make([]tg.KeyboardButtonRow, 0, len(m.Rows))
		for _, row := range m.Rows {
			buttons := make([]tg.KeyboardButtonClass, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, &tg.KeyboardButton{Text: b.Label})
			}
			rows = append(rows, tg.KeyboardButtonRow{Buttons: buttons})
		}
		return &tg.ReplyKeyboardMarkup{Resize: true, Rows: rows}
	case chat.MenuInline:
		rows := make([]tg.KeyboardButtonRow, 0, len(m.Rows))
		for _, row := range m.Rows {
			buttons := make([]tg.KeyboardButtonClass, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, &tg.KeyboardButtonCallback{Text: b.Label, Data: []byte(b.Data)})
			}
			rows = append(rows, tg.KeyboardButtonRow{Buttons: buttons})
		}
		return &tg.ReplyInlineMarkup{Rows: rows}
	case chat.MenuRemove:
		return &tg.ReplyKeyboardHide{}
	}
	return nil
}

func getMsgID(updates tg.UpdatesClass) int {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		for _, update := range u.Updates {
			if msg, ok := update.(*tg.UpdateNewMessage); ok {
				if m, ok := msg.Message.(*tg.Message); ok {
					return m.ID
				}
			}
			if id, ok := update.(*tg.UpdateMessageID); ok {
				return id.ID
			}
		}
	}
	return 0
}

// mediaFromUpdates extracts the document of the message just sent.
func mediaFromUpdates(updates tg.UpdatesClass) *cache.Media {
	u, ok := updates.(*tg.Updates)
	if !ok {
		return nil
	}
	for _, update := range u.Updates {
		nm, ok := update.(*tg.UpdateNewMessage)
		if !ok {
			continue
		}
		msg, ok := nm.Message.(*tg.Message)
		if !ok {
			continue
		}
		md, ok := msg.Media.(*tg.MessageMediaDocument)
		if !ok {
			return nil
		}
		doc, ok := md.Document.(*tg.Document)
		if !ok {
			return nil
		}
		return &cache.Media{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
			Size:          doc.Size,
		}
	}
	return nil
}
